package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrMissingClaim = errors.New("missing claim")

type Service interface {
	GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error)
	ParseClaims(raw map[string]interface{}) (user.Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken signs an HS256 access token. Login flows live elsewhere;
// this is used by the token CLI and tests.
func (j *JWTService) GenerateAccessToken(c user.Claims) (token string, expiresAt int64, err error) {
	if !c.Role.IsValid() {
		return "", 0, user.ErrInvalidRole
	}
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id": c.UserID,
		"role":    string(c.Role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}
	if c.EmployeeID != nil {
		claims["employee_id"] = *c.EmployeeID
	}

	_, token, err = j.tokenAuth.Encode(claims)
	return token, expiresAt, err
}

// ParseClaims turns verified token claims into a user.Claims.
func (j *JWTService) ParseClaims(raw map[string]interface{}) (user.Claims, error) {
	return ParseClaims(raw)
}

func ParseClaims(raw map[string]interface{}) (user.Claims, error) {
	tokenType, _ := raw["type"].(string)
	if tokenType != TokenTypeAccess {
		return user.Claims{}, user.ErrInvalidToken
	}

	userID, ok := raw["user_id"].(string)
	if !ok || userID == "" {
		return user.Claims{}, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}

	roleStr, _ := raw["role"].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Claims{}, user.ErrInvalidRole
	}

	c := user.Claims{UserID: userID, Role: role}
	if emp, ok := raw["employee_id"].(string); ok && emp != "" {
		c.EmployeeID = &emp
	}
	return c, nil
}
