package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven/mocks"
)

func newTestAuthService() (*mocks.MockSessionStore, *mocks.MockAuthAdapter, *authService) {
	sessionStore := mocks.NewMockSessionStore()
	authAdapter := mocks.NewMockAuthAdapter()
	operator := OperatorCredentials{
		Username:     "admin",
		PasswordHash: "password123", // Mock hasher uses plain text comparison
	}
	svc := NewAuthService(operator, sessionStore, authAdapter).(*authService)
	return sessionStore, authAdapter, svc
}

func TestAuthService_Authenticate(t *testing.T) {
	_, _, svc := newTestAuthService()

	tests := []struct {
		name    string
		req     domain.LoginRequest
		wantErr error
	}{
		{
			name: "valid credentials",
			req: domain.LoginRequest{
				Username: "admin",
				Password: "password123",
			},
			wantErr: nil,
		},
		{
			name: "empty username",
			req: domain.LoginRequest{
				Username: "",
				Password: "password123",
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "empty password",
			req: domain.LoginRequest{
				Username: "admin",
				Password: "",
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown username",
			req: domain.LoginRequest{
				Username: "intruder",
				Password: "password123",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			req: domain.LoginRequest{
				Username: "admin",
				Password: "letmein",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Authenticate(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}

			if resp.Token == "" {
				t.Error("expected token in response")
			}
			if resp.RefreshToken == "" {
				t.Error("expected refresh token in response")
			}
			if !resp.ExpiresAt.After(time.Now()) {
				t.Error("expected expiry in the future")
			}
		})
	}
}

func TestAuthService_Authenticate_CreatesSession(t *testing.T) {
	sessionStore, _, svc := newTestAuthService()

	resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Username: "admin",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	session, err := sessionStore.GetByToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("expected session for issued token: %v", err)
	}
	if session.Subject != "admin" {
		t.Errorf("expected subject admin, got %s", session.Subject)
	}
	if session.RefreshToken != resp.RefreshToken {
		t.Error("expected session to carry the issued refresh token")
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	sessionStore, authAdapter, svc := newTestAuthService()

	tests := []struct {
		name           string
		setupFunc      func(ctx context.Context) string
		wantErr        error
		validateResult func(t *testing.T, authCtx *domain.AuthContext)
	}{
		{
			name: "empty token",
			setupFunc: func(ctx context.Context) string {
				return ""
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "invalid token format",
			setupFunc: func(ctx context.Context) string {
				return "invalid-token"
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "malformed base64 token",
			setupFunc: func(ctx context.Context) string {
				return "not!valid@base64#"
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "expired token",
			setupFunc: func(ctx context.Context) string {
				// Create a token with expiration in the past
				claims := &domain.TokenClaims{
					Subject:   "admin",
					SessionID: "session-123",
					IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
					ExpiresAt: time.Now().Add(-1 * time.Hour).Unix(), // Expired 1 hour ago
				}
				token, _ := authAdapter.GenerateToken(claims)
				return token
			},
			wantErr: domain.ErrTokenExpired,
		},
		{
			name: "session not found",
			setupFunc: func(ctx context.Context) string {
				// Create a valid token but don't create corresponding session
				claims := &domain.TokenClaims{
					Subject:   "admin",
					SessionID: "non-existent-session",
					IssuedAt:  time.Now().Unix(),
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
				}
				token, _ := authAdapter.GenerateToken(claims)
				return token
			},
			wantErr: domain.ErrSessionNotFound,
		},
		{
			name: "session expired",
			setupFunc: func(ctx context.Context) string {
				// Create a valid token with valid expiration
				claims := &domain.TokenClaims{
					Subject:   "admin",
					SessionID: "session-expired",
					IssuedAt:  time.Now().Unix(),
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
				}
				token, _ := authAdapter.GenerateToken(claims)

				// Create session that is expired
				session := &domain.Session{
					ID:        "session-expired",
					Subject:   "admin",
					Token:     token,
					ExpiresAt: time.Now().Add(-1 * time.Minute), // Expired 1 minute ago
					CreatedAt: time.Now().Add(-2 * time.Hour),
				}
				_ = sessionStore.Save(ctx, session)
				return token
			},
			wantErr: domain.ErrTokenExpired,
		},
		{
			name: "successful validation",
			setupFunc: func(ctx context.Context) string {
				resp, err := svc.Authenticate(ctx, domain.LoginRequest{
					Username: "admin",
					Password: "password123",
				})
				if err != nil {
					t.Fatalf("failed to authenticate: %v", err)
				}
				return resp.Token
			},
			wantErr: nil,
			validateResult: func(t *testing.T, authCtx *domain.AuthContext) {
				if authCtx.Subject != "admin" {
					t.Errorf("expected subject admin, got %s", authCtx.Subject)
				}
				if authCtx.SessionID == "" {
					t.Error("expected session ID in auth context")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			token := tt.setupFunc(ctx)

			authCtx, err := svc.ValidateToken(ctx, token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.validateResult != nil {
				tt.validateResult(t, authCtx)
			}
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	sessionStore, _, svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Authenticate(ctx, domain.LoginRequest{
		Username: "admin",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, domain.RefreshRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	if refreshed.Token == resp.Token {
		t.Error("expected a new token after refresh")
	}
	if refreshed.RefreshToken == resp.RefreshToken {
		t.Error("expected refresh token rotation")
	}

	// New token validates, old session is gone
	if _, err := svc.ValidateToken(ctx, refreshed.Token); err != nil {
		t.Errorf("expected refreshed token to validate: %v", err)
	}
	if _, err := sessionStore.GetByToken(ctx, resp.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("expected old session to be deleted")
	}

	// Old refresh token cannot be replayed
	if _, err := svc.RefreshToken(ctx, domain.RefreshRequest{RefreshToken: resp.RefreshToken}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for replayed refresh token, got %v", err)
	}
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	sessionStore, _, svc := newTestAuthService()
	ctx := context.Background()

	// Empty refresh token
	if _, err := svc.RefreshToken(ctx, domain.RefreshRequest{}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for empty refresh token, got %v", err)
	}

	// Unknown refresh token
	if _, err := svc.RefreshToken(ctx, domain.RefreshRequest{RefreshToken: "unknown"}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for unknown refresh token, got %v", err)
	}

	// Expired session behind the refresh token
	session := &domain.Session{
		ID:           "stale-session",
		Subject:      "admin",
		Token:        "stale-token",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
		CreatedAt:    time.Now().Add(-25 * time.Hour),
	}
	_ = sessionStore.Save(ctx, session)

	if _, err := svc.RefreshToken(ctx, domain.RefreshRequest{RefreshToken: "stale-refresh"}); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired for stale session, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	_, _, svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Authenticate(ctx, domain.LoginRequest{
		Username: "admin",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}

	// Token no longer validates once its session is gone
	if _, err := svc.ValidateToken(ctx, resp.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}

	// Logout with empty or garbage tokens is a quiet no-op
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("expected nil for empty token, got %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Errorf("expected nil for unparseable token, got %v", err)
	}
}

func TestGenerateID(t *testing.T) {
	id1 := generateID()
	id2 := generateID()

	if id1 == "" {
		t.Error("expected non-empty ID")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	token1 := generateRefreshToken()
	token2 := generateRefreshToken()

	if token1 == "" {
		t.Error("expected non-empty refresh token")
	}
	if token1 == token2 {
		t.Error("expected unique refresh tokens")
	}
	// Refresh tokens should be longer than regular IDs
	if len(token1) < 30 {
		t.Error("expected longer refresh token")
	}
}
