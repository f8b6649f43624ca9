package auth

// JWTVerifier verifies bearer tokens issued by Supabase Auth.
// The middleware depends only on this interface.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims, or
	// domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases resources held by the verifier
	Close() error
}
