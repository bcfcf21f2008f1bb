// Package redis bootstraps a go-redis client from environment-driven
// configuration, with startup retries and a health check helper.
package redis
