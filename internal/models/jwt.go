package models

import "time"

// JWTClaims are the verified ID token claims used to resolve a local user
type JWTClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Exp           int64  `json:"exp"`
	Iat           int64  `json:"iat"`
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
}

// ExpiresIn reports the token's remaining lifetime at now, or zero once expired
func (c *JWTClaims) ExpiresIn(now time.Time) time.Duration {
	if c.Exp == 0 {
		return 0
	}
	return max(0, time.Unix(c.Exp, 0).Sub(now))
}
