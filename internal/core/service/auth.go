package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/metric"
)

// DefaultRevokeField is the JSON field carrying the refresh token on revoke.
const DefaultRevokeField = "refreshToken"

const defaultPasswordChanged = "Password changed successfully."

// AuthConfig holds configuration for AuthService.
type AuthConfig struct {
	Endpoints Endpoints

	// RevokeField names the refresh token field of the revoke request.
	// The backend defines the casing; only one form is sent.
	RevokeField string

	Metrics *metric.Registry
	Logger  logger.Logger
}

// AuthService handles login, logout and password changes, and owns the
// in-memory authenticated user.
type AuthService struct {
	requester   Requester
	tokens      TokenStore
	snapshots   SnapshotStore
	endpoints   Endpoints
	revokeField string
	metrics     *metric.Registry
	logger      logger.Logger

	mu   sync.RWMutex
	user *domain.AuthenticatedUser
}

// NewAuthService creates an AuthService. snapshots may be nil, in which
// case no student snapshot is kept.
func NewAuthService(requester Requester, tokens TokenStore, snapshots SnapshotStore, cfg *AuthConfig) *AuthService {
	if cfg == nil {
		cfg = &AuthConfig{}
	}

	s := &AuthService{
		requester:   requester,
		tokens:      tokens,
		snapshots:   snapshots,
		endpoints:   cfg.Endpoints.WithDefaults(),
		revokeField: cfg.RevokeField,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
	if s.revokeField == "" {
		s.revokeField = DefaultRevokeField
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	return s
}

// ============================================================================
// Login
// ============================================================================

// loginData is the data member of a successful login envelope.
type loginData struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         *domain.User    `json:"user"`
	Student      *domain.Student `json:"student"`
}

// Login authenticates with an email address or user name.
//
// Every server-side failure returns ErrLoginFailed, so an unknown account
// and a wrong password are indistinguishable. Transport failures return
// ErrNetwork. Blank input returns ErrValidation without a network call.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.AuthenticatedUser, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(password) == "" {
		return nil, domain.ErrValidation.WithDetails("Email or username and password are required.")
	}

	log := logger.L(ctx)

	resp, err := s.requester.Do(ctx, &connection.Request{
		Method:    http.MethodPost,
		Path:      s.endpoints.Login,
		Body:      domain.LoginPayload(identifier, password),
		Anonymous: true,
	})
	if err != nil {
		s.metrics.ObserveLogin(false)
		log.Debug("login request failed", "error", err)
		if errors.Is(err, domain.ErrNetwork) {
			return nil, domain.ErrNetwork.WithCause(err)
		}
		return nil, domain.ErrLoginFailed.WithCause(err)
	}

	res := resp.Result()
	if !res.OK() {
		s.metrics.ObserveLogin(false)
		log.Debug("login rejected", "status", resp.StatusCode, "error", res.Err.Cause)
		return nil, domain.ErrLoginFailed.WithCause(res.Err)
	}

	var data loginData
	if err := json.Unmarshal(res.Data, &data); err != nil ||
		data.AccessToken == "" || data.RefreshToken == "" ||
		(data.User == nil && data.Student == nil) {
		s.metrics.ObserveLogin(false)
		log.Debug("login response incomplete", "status", resp.StatusCode)
		return nil, domain.ErrLoginFailed
	}

	if err := s.tokens.SetTokens(domain.Tokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}); err != nil {
		s.metrics.ObserveLogin(false)
		return nil, domain.ErrStorage.WithCause(err)
	}

	user := &domain.AuthenticatedUser{Student: data.Student}
	if data.User != nil {
		user.User = *data.User
	} else {
		user.User = domain.User{ID: data.Student.ID, Email: data.Student.Email, FullName: data.Student.DisplayName()}
	}
	s.setUser(user)

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, domain.NewStudentSnapshot(user)); err != nil {
			log.Warn("failed to save student snapshot", "error", err)
		}
	}

	s.metrics.ObserveLogin(true)
	log.Info("logged in", "user_id", user.User.ID)
	return user, nil
}

// ============================================================================
// Logout
// ============================================================================

// Logout ends the session.
//
// The refresh token is revoked on a best-effort basis; a failed revoke is
// logged and ignored. Tokens, the student snapshot and the cached user are
// then cleared unconditionally. Calling Logout without a session is a no-op.
// Only local storage failures are returned.
func (s *AuthService) Logout(ctx context.Context) error {
	hadSession := s.tokens.HasToken() || s.tokens.GetRefreshToken() != ""

	if refreshToken := s.tokens.GetRefreshToken(); refreshToken != "" {
		s.revoke(ctx, refreshToken)
	}

	var errs []error
	if err := s.tokens.ClearTokens(); err != nil {
		errs = append(errs, err)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Clear(ctx); err != nil {
			errs = append(errs, domain.ErrStorage.WithCause(err))
		}
	}
	s.setUser(nil)

	if hadSession {
		s.metrics.ObserveSessionEnd(metric.EndLogout)
		logger.L(ctx).Info("logged out")
	}
	return errors.Join(errs...)
}

func (s *AuthService) revoke(ctx context.Context, refreshToken string) {
	log := logger.L(ctx)

	resp, err := s.requester.Do(ctx, &connection.Request{
		Method:    http.MethodPost,
		Path:      s.endpoints.Revoke,
		Body:      map[string]string{s.revokeField: refreshToken},
		NoRefresh: true,
	})
	if err != nil {
		log.Warn("token revoke failed", "error", err)
		return
	}
	if res := resp.Result(); !res.OK() {
		log.Warn("token revoke rejected", "status", resp.StatusCode, "error", res.Err.Cause)
	}
}

// ============================================================================
// Session state
// ============================================================================

// IsAuthenticated reports whether an access token is present. The token is
// not inspected; the server decides whether it is still valid.
func (s *AuthService) IsAuthenticated() bool {
	return s.tokens.HasToken()
}

// CurrentUser returns the authenticated user, or nil when there is no
// session. The in-memory user wins over the persisted snapshot; the
// snapshot fills what memory lacks.
func (s *AuthService) CurrentUser(ctx context.Context) *domain.AuthenticatedUser {
	if !s.tokens.HasToken() {
		return nil
	}

	s.mu.RLock()
	mem := s.user
	s.mu.RUnlock()

	var (
		snap domain.StudentSnapshot
		ok   bool
	)
	if s.snapshots != nil {
		var err error
		snap, ok, err = s.snapshots.Load(ctx)
		if err != nil {
			logger.L(ctx).Debug("failed to load student snapshot", "error", err)
		}
	}

	switch {
	case mem == nil && !ok:
		return nil
	case mem == nil:
		return snap.User()
	}

	u := *mem
	if !ok {
		return &u
	}
	if u.Student == nil {
		u.Student = snap.Student()
	}
	if u.User.ID == "" {
		u.User.ID = snap.UserID
	}
	if u.User.UserName == "" {
		u.User.UserName = snap.UserName
	}
	if u.User.Email == "" {
		u.User.Email = snap.Email
	}
	return &u
}

func (s *AuthService) setUser(u *domain.AuthenticatedUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// ============================================================================
// Password change
// ============================================================================

// ChangePassword changes the password of the logged-in student and returns
// the confirmation message.
func (s *AuthService) ChangePassword(ctx context.Context, current, next, confirm string) (string, error) {
	switch {
	case current == "" || next == "" || confirm == "":
		return "", domain.ErrValidation.WithDetails("All password fields are required.")
	case next != confirm:
		return "", domain.ErrValidation.WithDetails("New password and confirmation do not match.")
	case next == current:
		return "", domain.ErrValidation.WithDetails("New password must differ from the current password.")
	}

	resp, err := s.requester.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   s.endpoints.ChangePassword,
		Body: map[string]string{
			"CurrentPassword": current,
			"NewPassword":     next,
			"ConfirmPassword": confirm,
		},
	})
	if err != nil {
		return "", normalize(err)
	}

	res := resp.Result()
	if !res.OK() {
		logger.L(ctx).Debug("password change rejected", "status", resp.StatusCode, "error", res.Err.Cause)
		return "", domain.ErrPasswordChangeRejected.WithCause(res.Err)
	}

	if res.Message != "" {
		return res.Message, nil
	}
	return defaultPasswordChanged, nil
}
