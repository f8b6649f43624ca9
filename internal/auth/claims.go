package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claim set issued by Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// UserID is the subject claim. It is recorded as the actor on spec history.
func (c *Claims) UserID() string {
	return c.Subject
}
