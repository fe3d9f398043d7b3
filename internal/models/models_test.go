package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPublic_OmitsPasswordHash(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	u := User{ID: 7, Username: "ana", Email: "ana@x.com", PasswordHash: "$2a$10$secret", Role: RoleUser, CreatedAt: now}

	body, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(body), "secret")
	assert.NotContains(t, string(body), "password")

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	assert.False(t, u.IsAdmin())
	u.Role = RoleAdmin
	assert.True(t, u.IsAdmin())
}
