package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

func TestJWTManager_MintAndValidate(t *testing.T) {
	m := NewJWTManager(&JWTConfig{Secret: "test-secret", TokenTTL: time.Hour})

	want := Identity{UserID: "42", Email: "pat@example.com", Name: "Pat"}
	token, expiresAt, err := m.Mint(want)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJWTManager_Mint_EmptySubject(t *testing.T) {
	m := NewJWTManager(&JWTConfig{Secret: "test-secret"})

	_, _, err := m.Mint(Identity{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySubject)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestJWTManager_Validate_WrongSecret(t *testing.T) {
	minter := NewJWTManager(&JWTConfig{Secret: "secret-a", TokenTTL: time.Hour})
	verifier := NewJWTManager(&JWTConfig{Secret: "secret-b", TokenTTL: time.Hour})

	token, _, err := minter.Mint(Identity{UserID: "42"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestJWTManager_Validate_Expired(t *testing.T) {
	m := NewJWTManager(&JWTConfig{Secret: "test-secret", TokenTTL: time.Hour})

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Validate_Garbage(t *testing.T) {
	m := NewJWTManager(&JWTConfig{Secret: "test-secret"})

	_, err := m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
