// Package auth derives and checks the role-scoped capability tokens.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/fruitctl/fruitctl/internal/apperr"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

const tokenPrefix = "fctl_"

// Roles lists every role a token can be derived for.
var Roles = []Role{RoleAdmin, RoleAgent}

// DeriveToken returns the capability token for role:
// fctl_<role>_<hex hmac-sha256(secret, role)>.
func DeriveToken(secret string, role Role) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(role))
	return tokenPrefix + string(role) + "_" + hex.EncodeToString(mac.Sum(nil))
}

// Gate authenticates bearer credentials against the tokens derived from a shared secret.
type Gate struct {
	secret string
}

func NewGate(secret string) *Gate {
	return &Gate{secret: secret}
}

// Authenticate maps token to a role. Every role is compared so timing does
// not depend on which one matched.
func (g *Gate) Authenticate(token string) (Role, error) {
	if token == "" {
		return "", apperr.Unauthorized("Missing credentials")
	}
	var matched Role
	for _, role := range Roles {
		if hmac.Equal([]byte(token), []byte(DeriveToken(g.secret, role))) {
			matched = role
		}
	}
	if matched == "" {
		return "", apperr.Unauthorized("Invalid credentials")
	}
	return matched, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
