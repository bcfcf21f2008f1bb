// Package config loads environment variables into tagged structs, with
// optional .env file support for local development. Configuration values
// stay plain structs that are passed explicitly to their consumers; nothing
// in this module reads configuration through globals.
package config
