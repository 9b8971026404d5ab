// Package sessions contains the server-side session lifecycle: login,
// refresh, logout, and registration. It turns verified credentials into
// token pairs and keeps the durable refresh-token store consistent with
// the tokens in flight.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/dbx"
	"github.com/avolkov/blogpulse/internal/server/auth"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/avolkov/blogpulse/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Session bundles what the auth endpoints return: the user profile, the
// short-lived access token, and (on login/register) the refresh token the
// gateway puts into the cookie.
type Session struct {
	User         *models.Profile
	AccessToken  string
	RefreshToken string
}

// Service provides authentication-related operations:
//   - Login: verify credentials and mint a token pair
//   - Refresh: re-verify the refresh token and mint a new access token
//   - Logout: revoke the refresh token
//   - Register: create a user and its first session transactionally
type Service struct {
	db          *sql.DB
	repos       repomanager.RepositoryManager
	authority   *auth.Authority
	adminEmails map[string]struct{}
}

// NewService constructs a Service. adminEmails is the static allow-list of
// identities permitted to register with the admin role.
func NewService(db *sql.DB, repos repomanager.RepositoryManager, authority *auth.Authority, adminEmails []string) *Service {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allow[e] = struct{}{}
	}
	return &Service{db: db, repos: repos, authority: authority, adminEmails: allow}
}

// Login verifies the password of an active local account and returns a new
// session. The refresh token row is persisted in the same transaction that
// completes the login, so no token is ever handed out without a durable
// record.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if user.PasswordHash == "" && user.AuthProvider != models.ProviderLocal {
		return nil, common.ErrAuthProviderMismatch
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	access, err := s.authority.IssueAccess(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.authority.IssueRefresh(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.RefreshTokens(tx).Create(ctx, user.ID, refresh)
	}); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &Session{User: user.Profile(), AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated: the same string stays valid until
// logout. The user's active flag is re-checked on every call, so an account
// deactivated after login is rejected here.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.ErrAuthentication
	}

	userID, err := s.authority.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("error verifying refresh token: %w", err)
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAuthentication
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !user.IsActive {
		return nil, common.ErrInactiveAccount
	}

	access, err := s.authority.IssueAccess(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{User: user.Profile(), AccessToken: access}, nil
}

// Logout deletes the durable refresh-token row. Repeated calls with the
// same token succeed: deleting a non-existent row is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repos.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Register creates a new local user and, in the same transaction, the
// durable record of its first refresh token. The role must be one of the
// two known roles and defaults to "user"; requesting the admin role is
// allowed only for allow-listed emails.
func (s *Service) Register(ctx context.Context, email, password, role string) (*Session, error) {
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser:
	case models.RoleAdmin:
		if _, ok := s.adminEmails[email]; !ok {
			return nil, common.ErrAuthorization
		}
	default:
		return nil, common.ErrBadRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	username, err := genUsername()
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		AuthProvider: models.ProviderLocal,
		IsActive:     true,
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		access, err := s.authority.IssueAccess(created.ID)
		if err != nil {
			return common.ErrorInternal
		}
		refresh, err := s.authority.IssueRefresh(created.ID)
		if err != nil {
			return common.ErrorInternal
		}

		if err := s.repos.RefreshTokens(tx).Create(ctx, created.ID, refresh); err != nil {
			return fmt.Errorf("error storing refresh token: %w", err)
		}

		session = &Session{User: created.Profile(), AccessToken: access, RefreshToken: refresh}
		return nil
	}); err != nil {
		return nil, err
	}

	return session, nil
}

// genUsername builds a random handle in the "user-<hex>" form.
func genUsername() (string, error) {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	return "user-" + suffix, nil
}
