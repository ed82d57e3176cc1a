package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"todo-tracker/internal/model"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token is expired")
)

// AccessTokenClaims is the payload of an access token.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

// JWTManager validates HS256 access tokens carrying a user_id claim.
type JWTManager struct {
	secret []byte
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTManager{secret: []byte(secret)}, nil
}

// ValidateAccessToken checks the signature and expiry of tokenString and
// returns the user id it was issued for.
func (j *JWTManager) ValidateAccessToken(tokenString string) (model.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return model.Anonymous, ErrExpiredToken
		}
		return model.Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.Anonymous, ErrInvalidToken
	}
	return model.UserID(claims.UserID), nil
}

// IssueAccessToken signs a token for user. It backs the `token` command for
// local development.
func (j *JWTManager) IssueAccessToken(user model.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AccessTokenClaims{
		UserID: string(user),
		StandardClaims: jwt.StandardClaims{
			Subject:   string(user),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}
