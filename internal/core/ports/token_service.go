package ports

// TokenService mints and verifies bearer tokens.
type TokenService interface {
	Issue(subject string) (string, error)
	// Verify returns the embedded subject or one of domain.ErrTokenInvalid,
	// domain.ErrTokenExpired, domain.ErrTokenSignatureInvalid.
	Verify(token string) (string, error)
	VerifyMatchesPrincipal(token, expectedSubject string) bool
}
