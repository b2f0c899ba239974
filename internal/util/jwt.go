package util

import (
	"errors"
	"strings"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenType      = "Bearer"
	TokenIssuer    = "threadit"
	AccessTokenTTL = time.Hour
)

var errMissingSecret = errors.New("jwt secret key is not configured")

// checked in order, an expired token also carries ErrTokenInvalidClaims
var tokenErrorMessages = []struct {
	err     error
	message string
}{
	{jwt.ErrTokenMalformed, "Authentication token is malformed"},
	{jwt.ErrTokenExpired, "Authentication token is expired"},
	{jwt.ErrTokenNotValidYet, "Authentication token is not valid yet"},
	{jwt.ErrTokenSignatureInvalid, "Authentication token signature is invalid"},
}

func unauthorized(message string) *model.ValidationError {
	return &model.ValidationError{
		Code:    constant.ERR_UNAUTHORIZED_ERROR,
		Message: message,
		Param:   "accessToken",
	}
}

// IssueAccessToken signs an HS256 token whose subject is the user id.
func IssueAccessToken(userId uuid.UUID, secret string) (model.TokenResponse, error) {
	if secret == "" {
		return model.TokenResponse{}, errMissingSecret
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userId.String(),
		Issuer:    TokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int(AccessTokenTTL.Seconds()),
		TokenType:   TokenType,
	}, nil
}

// ParseAccessToken reads an Authorization header value and returns the bare
// token with the user it was issued to. Every rejection is an unauthorized
// ValidationError.
func ParseAccessToken(authorization string, secret string) (string, uuid.UUID, error) {
	if secret == "" {
		return "", uuid.Nil, errMissingSecret
	}

	if authorization == "" {
		return "", uuid.Nil, unauthorized("No authentication token is provided")
	}

	raw, ok := strings.CutPrefix(authorization, TokenType+" ")
	if !ok {
		return "", uuid.Nil, unauthorized("Authentication token format is not match")
	}
	if raw == "" {
		return "", uuid.Nil, unauthorized("Authentication token is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		for _, known := range tokenErrorMessages {
			if errors.Is(err, known.err) {
				return "", uuid.Nil, unauthorized(known.message)
			}
		}
		return "", uuid.Nil, unauthorized("Authentication token is invalid")
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", uuid.Nil, unauthorized("Authentication token is invalid")
	}

	return raw, userId, nil
}
