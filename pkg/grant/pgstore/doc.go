// Package pgstore persists grant clients and access tokens in PostgreSQL.
// It implements grant.ClientStore and grant.TokenStore, stores client
// secrets as bcrypt hashes, and enforces one live token per identity with a
// partial unique index, which is the storage-side fix for the issuer's
// non-atomic find-then-create.
package pgstore
