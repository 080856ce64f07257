package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"campuslink/internal/domain"
)

// Verifier checks bearer tokens issued by the platform's auth service.
// This core only verifies; issuance lives outside it.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) Verifier {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return Verifier{secret: secretCopy}
}

// Verify parses and validates an HS256 token and returns the identity
// embedded in its claims. Any failure (missing, malformed, bad signature,
// expired, wrong algorithm) is domain.ErrAuthInvalid.
func (v Verifier) Verify(tokenString string) (domain.Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return domain.Identity{}, domain.ErrAuthInvalid
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrAuthInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, domain.ErrAuthInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.ErrAuthInvalid
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	role, _ := claims["role"].(string)
	collegeID, _ := claims["college_id"].(string)

	return domain.Identity{
		UserID:    userID,
		Role:      domain.Role(role),
		CollegeID: collegeID,
	}, nil
}

// Sign builds a token for the given identity. Used by tests and local
// tooling; production tokens come from the auth service.
func (v Verifier) Sign(id domain.Identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    id.UserID,
		"role":       string(id.Role),
		"college_id": id.CollegeID,
		"exp":        time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(v.secret)
}
