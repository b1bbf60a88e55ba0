package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamvault/account-service/internal/models"
)

// Cookie names under which the tokens travel.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Error variables
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrNoToken      = errors.New("no token in request")
)

// Tokens issues and verifies access and refresh JWTs. The two classes are
// signed with independent secrets and lifetimes: access tokens are verified
// statelessly on every request, refresh tokens are additionally checked
// against the slot stored on the user record.
type Tokens struct {
	accessSecret  string
	refreshSecret string
	accessExp     time.Duration
	refreshExp    time.Duration
}

// New creates a Tokens instance with the given secrets and expirations.
func New(accessSecret, refreshSecret string, accessExp, refreshExp time.Duration) *Tokens {
	return &Tokens{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExp:     accessExp,
		refreshExp:    refreshExp,
	}
}

// Claims carried by an access token.
type Claims struct {
	UserID   primitive.ObjectID
	Email    string
	Username string
	FullName string
}

// NewAccessToken signs an access token carrying the user's identity claims.
func (t *Tokens) NewAccessToken(ctx context.Context, user *models.UserView) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID.Hex(),
		"email":     user.Email,
		"username":  user.Username,
		"full_name": user.FullName,
		"iat":       now.Unix(),
		"exp":       now.Add(t.accessExp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.accessSecret))
}

// NewRefreshToken signs a refresh token carrying only the user id.
func (t *Tokens) NewRefreshToken(ctx context.Context, userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID.Hex(),
		"iat":     now.Unix(),
		"exp":     now.Add(t.refreshExp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.refreshSecret))
}

// ParseAccess verifies tokenString against the access secret and returns its
// claims. Returns ErrTokenExpired on expiry, ErrTokenInvalid otherwise.
func (t *Tokens) ParseAccess(ctx context.Context, tokenString string) (*Claims, error) {
	mapClaims, err := t.parse(tokenString, t.accessSecret)
	if err != nil {
		return nil, err
	}

	userID, err := userIDFromClaims(mapClaims)
	if err != nil {
		return nil, err
	}

	claims := &Claims{UserID: userID}
	if v, ok := mapClaims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := mapClaims["username"].(string); ok {
		claims.Username = v
	}
	if v, ok := mapClaims["full_name"].(string); ok {
		claims.FullName = v
	}
	return claims, nil
}

// ParseRefresh verifies tokenString against the refresh secret and returns
// the user id it was issued for.
func (t *Tokens) ParseRefresh(ctx context.Context, tokenString string) (primitive.ObjectID, error) {
	mapClaims, err := t.parse(tokenString, t.refreshSecret)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return userIDFromClaims(mapClaims)
}

func (t *Tokens) parse(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (primitive.ObjectID, error) {
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	return userID, nil
}

// TokenFromRequest extracts the access token from the accessToken cookie or,
// failing that, from the Authorization header with the scheme prefix
// stripped.
func (t *Tokens) TokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "", ErrNoToken
}
