package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-test-jwt-secret!")

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	id := Identity{ID: 3, Username: "ana", Role: "admin"}
	token, exp, err := Issue(testSecret, id, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 2*time.Second)

	got, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	id := Identity{ID: 1, Username: "bob", Role: "user"}
	expired, _, err := IssueAt(testSecret, id, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	valid, _, err := Issue(testSecret, id, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		ID: 1, Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret []byte
		token  string
		want   error
	}{
		{name: "expired", secret: testSecret, token: expired, want: ErrExpiredToken},
		{name: "wrong secret", secret: []byte("another-secret-another-secret!!!"), token: valid, want: ErrInvalidToken},
		{name: "garbage", secret: testSecret, token: "not-a-jwt", want: ErrInvalidToken},
		{name: "alg none", secret: testSecret, token: noneToken, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.secret, tt.token)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIssue_EmptySecret(t *testing.T) {
	t.Parallel()

	_, _, err := Issue(nil, Identity{ID: 1}, time.Hour)
	require.Error(t, err)
}
