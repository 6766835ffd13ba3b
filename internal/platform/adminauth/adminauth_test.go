package adminauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "landing/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-secret", "landing")

	token, err := svc.Issue("ops@example.com", time.Hour)
	require.NoError(t, err)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", subject)
}

func TestValidateRejects(t *testing.T) {
	svc := New("test-secret", "landing")

	t.Run("wrong signing key", func(t *testing.T) {
		token, err := New("other-secret", "landing").Issue("ops", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		issuer := New("test-secret", "landing")
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issuer.Issue("ops", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("non-admin role", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role: "viewer",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops",
				Issuer:    "landing",
				Audience:  []string{audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Validate(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestDisabledWithoutKey(t *testing.T) {
	svc := New("", "landing")

	_, err := svc.Issue("ops", time.Hour)
	assert.Error(t, err)

	_, err = svc.Validate("anything")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAPIKey(t *testing.T) {
	_, err := HashAPIKey("short")
	require.Error(t, err)

	hash, err := HashAPIKey("0123456789abcdef-landing")
	require.NoError(t, err)
	svc := New("", "landing", WithAPIKeyHash(hash))
	assert.True(t, svc.Enabled())

	subject, err := svc.Validate("0123456789abcdef-landing")
	require.NoError(t, err)
	assert.Equal(t, APIKeySubject, subject)

	_, err = svc.Validate("0123456789abcdef-wrong")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	t.Run("jwt still validated when both configured", func(t *testing.T) {
		both := New("test-secret", "landing", WithAPIKeyHash(hash))
		token, err := both.Issue("ops", time.Hour)
		require.NoError(t, err)
		subject, err := both.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "ops", subject)
	})
}
