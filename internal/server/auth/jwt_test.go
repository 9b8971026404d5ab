package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avolkov/blogpulse/internal/common"
)

type fakeStore struct {
	tokens map[string]bool
	err    error
}

func (f *fakeStore) Exists(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.tokens[token], nil
}

func newAuthority(store TokenStore) *Authority {
	return NewAuthority([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 24*time.Hour, store)
}

func TestIssueAndVerifyAccess_Success(t *testing.T) {
	t.Parallel()

	a := newAuthority(&fakeStore{})
	tok, err := a.IssueAccess("user-123")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	userID, err := a.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	t.Parallel()

	a := NewAuthority([]byte("s1"), []byte("s2"), -1*time.Second, time.Hour, &fakeStore{})
	tok, err := a.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	_, err = a.VerifyAccess(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccess_RefreshTokenRejected(t *testing.T) {
	t.Parallel()

	a := newAuthority(&fakeStore{})
	refresh, err := a.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	// Signed with the refresh secret, must not pass as an access token.
	_, err = a.VerifyAccess(refresh)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerifyAccess_Malformed(t *testing.T) {
	t.Parallel()

	a := newAuthority(&fakeStore{})
	if _, err := a.VerifyAccess("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRefresh_StorePresenceRequired(t *testing.T) {
	t.Parallel()

	store := &fakeStore{tokens: map[string]bool{}}
	a := newAuthority(store)

	tok, err := a.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	// Valid signature but no durable row: rejected.
	if _, err := a.VerifyRefresh(context.Background(), tok); !errors.Is(err, common.ErrAuthentication) {
		t.Fatalf("expected common.ErrAuthentication for deleted token, got %v", err)
	}

	store.tokens[tok] = true
	userID, err := a.VerifyRefresh(context.Background(), tok)
	if err != nil {
		t.Fatalf("VerifyRefresh error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("userID mismatch: got %q", userID)
	}
}

func TestVerifyRefresh_StoreError(t *testing.T) {
	t.Parallel()

	a := newAuthority(&fakeStore{err: errors.New("db down")})
	tok, err := a.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := a.VerifyRefresh(context.Background(), tok); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestVerifyRefreshSignature_SkipsStore(t *testing.T) {
	t.Parallel()

	// Store says the token is revoked, signature check alone still passes.
	a := newAuthority(&fakeStore{tokens: map[string]bool{}})
	tok, err := a.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	userID, err := a.VerifyRefreshSignature(tok)
	if err != nil {
		t.Fatalf("VerifyRefreshSignature error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("userID mismatch: got %q", userID)
	}
}
