package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrInvalidToken covers every decode failure: bad base64, wrong shape,
	// non-numeric user id. Callers must not expose which check failed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSecretMismatch is returned when a well-formed token carries the
	// wrong secret for its user id.
	ErrSecretMismatch = errors.New("secret mismatch")
)

// EncodeToken builds the bearer credential handed to a client at login:
// base64("<secret>:<userId>"). The token is self-contained; no session
// record backs it.
func EncodeToken(userID string) string {
	return base64.StdEncoding.EncodeToString([]byte(Secret(userID) + ":" + userID))
}

// DecodeToken splits a bearer credential into its user id and the secret the
// client presented. It performs no verification; that is VerifyToken's job.
func DecodeToken(token string) (userID, providedSecret string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	providedSecret, userID, ok := strings.Cut(string(raw), ":")
	if !ok || providedSecret == "" || userID == "" {
		return "", "", ErrInvalidToken
	}
	if !isNumericID(userID) {
		return "", "", ErrInvalidToken
	}
	return userID, providedSecret, nil
}

// VerifyToken decodes a bearer credential and checks its secret against the
// freshly derived one for the claimed user id. Comparison is constant-time.
// Legacy-scheme secrets are still accepted; callers may want to log those so
// users get nudged to re-authenticate.
func VerifyToken(token string) (userID string, legacy bool, err error) {
	userID, provided, err := DecodeToken(token)
	if err != nil {
		return "", false, err
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(Secret(userID))) == 1 {
		return userID, false, nil
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(LegacySecret(userID))) == 1 {
		return userID, true, nil
	}
	return "", false, ErrSecretMismatch
}

func isNumericID(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
