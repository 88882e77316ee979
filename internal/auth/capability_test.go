package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16"

func TestDeriveToken(t *testing.T) {
	admin := DeriveToken(testSecret, RoleAdmin)
	agent := DeriveToken(testSecret, RoleAgent)

	assert.True(t, strings.HasPrefix(admin, "fctl_admin_"))
	assert.True(t, strings.HasPrefix(agent, "fctl_agent_"))
	assert.NotEqual(t, admin, agent)
	assert.Equal(t, admin, DeriveToken(testSecret, RoleAdmin), "derivation is deterministic")
	assert.NotEqual(t, admin, DeriveToken("another-secret-value", RoleAdmin))

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("admin"))
	assert.Equal(t, "fctl_admin_"+hex.EncodeToString(mac.Sum(nil)), admin)
}

func TestGate_Authenticate(t *testing.T) {
	gate := NewGate(testSecret)

	tests := []struct {
		name     string
		token    string
		wantRole Role
		wantErr  bool
	}{
		{"admin", DeriveToken(testSecret, RoleAdmin), RoleAdmin, false},
		{"agent", DeriveToken(testSecret, RoleAgent), RoleAgent, false},
		{"empty", "", "", true},
		{"garbage", "fctl_admin_deadbeef", "", true},
		{"other secret", DeriveToken("another-secret-value", RoleAdmin), "", true},
		{"unknown role", DeriveToken(testSecret, Role("root")), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := gate.Authenticate(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc "))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
