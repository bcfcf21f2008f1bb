// Package pg bootstraps a pgx connection pool from environment-driven
// configuration, with startup retries and a health check helper. Schema
// migrations live next to the stores that own the tables, not here.
package pg
