package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the displayable part of a JWT credential. The signature is the
// server's business, so claims are read without verification and used only
// for presentation. Credentials that are not JWTs stay fully opaque.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
}

// Identity decodes the current credential's claims for display. The second
// return is false when logged out or when the token carries no readable
// subject.
func (s *Session) Identity() (Identity, bool) {
	token := s.Token()
	if token == "" {
		return Identity{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Identity{}, false
	}
	identity := Identity{Subject: subject}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, true
}
