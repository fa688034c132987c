package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := NewSigner("secret", time.Hour, "test")
	company := uuid.New()

	token, err := s.GenerateToken(Claims{
		UserID:       uuid.New(),
		CompanyID:    &company,
		Email:        "cashier@example.com",
		RoleCode:     "CASHIER",
		Privileges:   []string{"transaction:create"},
		TokenVersion: "v1",
	})
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cashier@example.com", claims.Email)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, company, *claims.CompanyID)
	assert.Equal(t, []string{"transaction:create"}, claims.Privileges)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewSigner("one", time.Hour, "test").GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewSigner("two", time.Hour, "test").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	s := NewSigner("secret", -time.Minute, "test")
	token, err := s.GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMissing(t *testing.T) {
	_, err := NewSigner("secret", time.Hour, "test").ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
