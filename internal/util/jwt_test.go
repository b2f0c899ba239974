package util

import (
	"errors"
	"testing"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-token-generation"

func signClaims(t *testing.T, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestIssueAccessToken(t *testing.T) {
	userId := uuid.New()

	token, err := IssueAccessToken(userId, testSecret)
	require.NoError(t, err)

	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, TokenType, token.TokenType)
	assert.Equal(t, int(AccessTokenTTL.Seconds()), token.ExpiresIn)

	_, err = IssueAccessToken(userId, "")
	assert.Error(t, err)
}

func TestParseAccessToken(t *testing.T) {
	userId := uuid.New()

	issued, err := IssueAccessToken(userId, testSecret)
	require.NoError(t, err)
	accessToken := issued.AccessToken

	t.Run("valid token", func(t *testing.T) {
		raw, gotUserId, err := ParseAccessToken(TokenType+" "+accessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, accessToken, raw)
		assert.Equal(t, userId, gotUserId)
	})

	now := time.Now()
	claims := func(mutate func(*jwt.RegisteredClaims)) jwt.RegisteredClaims {
		c := jwt.RegisteredClaims{
			Subject:   userId.String(),
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}
		mutate(&c)
		return c
	}

	expired := signClaims(t, jwt.SigningMethodHS256, claims(func(c *jwt.RegisteredClaims) {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	}))
	otherIssuer := signClaims(t, jwt.SigningMethodHS256, claims(func(c *jwt.RegisteredClaims) {
		c.Issuer = "someone-else"
	}))
	noExpiry := signClaims(t, jwt.SigningMethodHS256, claims(func(c *jwt.RegisteredClaims) {
		c.ExpiresAt = nil
	}))
	badSubject := signClaims(t, jwt.SigningMethodHS256, claims(func(c *jwt.RegisteredClaims) {
		c.Subject = "user:42"
	}))
	otherMethod := signClaims(t, jwt.SigningMethodHS512, claims(func(*jwt.RegisteredClaims) {}))

	tests := []struct {
		name    string
		header  string
		secret  string
		message string
	}{
		{name: "missing header", header: "", secret: testSecret, message: "No authentication token is provided"},
		{name: "wrong prefix", header: "Token " + accessToken, secret: testSecret, message: "Authentication token format is not match"},
		{name: "empty token", header: TokenType + " ", secret: testSecret, message: "Authentication token is empty"},
		{name: "malformed", header: TokenType + " abc", secret: testSecret, message: "Authentication token is malformed"},
		{name: "expired", header: TokenType + " " + expired, secret: testSecret, message: "Authentication token is expired"},
		{name: "wrong secret", header: TokenType + " " + accessToken, secret: "another-secret", message: "Authentication token signature is invalid"},
		{name: "other signing method", header: TokenType + " " + otherMethod, secret: testSecret, message: "Authentication token signature is invalid"},
		{name: "other issuer", header: TokenType + " " + otherIssuer, secret: testSecret, message: "Authentication token is invalid"},
		{name: "no expiry", header: TokenType + " " + noExpiry, secret: testSecret, message: "Authentication token is invalid"},
		{name: "subject is not a user id", header: TokenType + " " + badSubject, secret: testSecret, message: "Authentication token is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseAccessToken(tt.header, tt.secret)
			require.Error(t, err)

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, constant.ERR_UNAUTHORIZED_ERROR, validationErr.Code)
			assert.Equal(t, tt.message, validationErr.Message)
			assert.Equal(t, "accessToken", validationErr.Param)
		})
	}

	t.Run("missing secret is a server error", func(t *testing.T) {
		_, _, err := ParseAccessToken(TokenType+" "+accessToken, "")
		require.Error(t, err)

		var validationErr *model.ValidationError
		assert.False(t, errors.As(err, &validationErr))
	})
}
