// Package auth implements the token authority: it signs and verifies the
// short-lived access tokens and the long-lived refresh tokens, and checks
// refresh tokens against the durable token store.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims plus the owning user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// TokenStore is the subset of the refresh-token repository the authority
// needs: presence of a row is the sole revocation mechanism.
type TokenStore interface {
	Exists(ctx context.Context, token string) (bool, error)
}

// Authority signs and verifies both token kinds. Access and refresh tokens
// are signed with independent secrets, so one cannot stand in for the other.
type Authority struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	store         TokenStore
}

// NewAuthority constructs an Authority bound to the given token store.
func NewAuthority(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration, store TokenStore) *Authority {
	return &Authority{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		store:         store,
	}
}

// IssueAccess signs a short-lived access token carrying only the user id.
func (a *Authority) IssueAccess(userID string) (string, error) {
	return generateToken(userID, a.accessSecret, a.accessTTL)
}

// IssueRefresh signs a long-lived refresh token. The caller is responsible
// for persisting it in the same transaction as the event that produced it.
func (a *Authority) IssueRefresh(userID string) (string, error) {
	return generateToken(userID, a.refreshSecret, a.refreshTTL)
}

// VerifyAccess checks the access token signature and expiry and returns the
// user id. Expired tokens yield common.ErrTokenExpired, everything else
// common.ErrInvalidToken.
func (a *Authority) VerifyAccess(tokenString string) (string, error) {
	userID, err := parseToken(tokenString, a.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

// VerifyRefresh checks both cryptographic validity and store presence.
// A cryptographically valid token whose row has been deleted is rejected:
// deleting the row is how logout revokes a session.
func (a *Authority) VerifyRefresh(ctx context.Context, tokenString string) (string, error) {
	ok, err := a.store.Exists(ctx, tokenString)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrAuthentication
	}
	return a.VerifyRefreshSignature(tokenString)
}

// VerifyRefreshSignature checks only the signature and expiry of a refresh
// token, without consulting the store. The realtime handshake uses this
// weaker check, so a revoked token can still open new push connections.
func (a *Authority) VerifyRefreshSignature(tokenString string) (string, error) {
	userID, err := parseToken(tokenString, a.refreshSecret)
	if err != nil {
		return "", common.ErrAuthentication
	}
	return userID, nil
}

func generateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func parseToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
