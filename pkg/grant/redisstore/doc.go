// Package redisstore persists access tokens in Redis, implementing
// grant.TokenStore. Token identity is claimed with SET NX, so concurrent
// identical grants converge on a single token, and expiry rides on key TTL.
package redisstore
