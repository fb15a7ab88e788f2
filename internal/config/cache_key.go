package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// VerifyAttemptsKey returns the cache key counting a user's verify-code attempts.
func (r *CacheKeyStruct) VerifyAttemptsKey(userID string) string {
	return fmt.Sprintf("verify:%s:attempts", userID)
}

// RevokedTokenKey returns the cache key marking a JWT (by JTI) as revoked.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("token:%s:revoked", jti)
}

var CacheKey = NewCacheKeyStruct()
