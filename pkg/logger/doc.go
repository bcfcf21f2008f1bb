// Package logger builds configured slog.Logger instances and provides
// attribute helpers for the keys used across this module, keeping log
// output consistent between packages.
package logger
