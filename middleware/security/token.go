package security

import (
	"github.com/golang-jwt/jwt/v5"

	"marketchat/tools/errs"
)

// ParseUserToken verifies an HS256 token and extracts the user id from the
// "uid" claim, falling back to the standard subject. Used by the
// authenticate event when the client sends a token instead of a plain
// user id.
func ParseUserToken(secret []byte) func(token string) (string, error) {
	return func(raw string) (string, error) {
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errs.New("unexpected signing method")
			}
			return secret, nil
		})
		if err != nil {
			return "", errs.Wrap(err, "parse token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok || !tok.Valid {
			return "", errs.New("invalid token claims")
		}
		if uid, ok := claims["uid"].(string); ok && uid != "" {
			return uid, nil
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			return sub, nil
		}
		return "", errs.New("token carries no user id")
	}
}
