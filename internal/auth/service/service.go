package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authmetrics "lifeline/internal/auth/metrics"
	"lifeline/internal/auth/models"
	"lifeline/internal/auth/password"
	donormodels "lifeline/internal/donor/models"
	jwttoken "lifeline/internal/jwt_token"
	platformmetrics "lifeline/internal/platform/metrics"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// DonorCreator opens the donor profile that comes with a donor account.
type DonorCreator interface {
	CreateDonor(ctx context.Context, donor *donormodels.Donor) error
}

// StoreTx runs fn atomically; stores called with the callback's ctx join it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role, expiresIn time.Duration) (jwttoken.Issued, error)
	GenerateRefreshToken(userID id.UserID, role id.Role, expiresIn time.Duration) (jwttoken.Issued, error)
	ValidateToken(tokenString string, want jwttoken.TokenType) (*jwttoken.Claims, error)
}

// TokenRevocationList records logged-out token ids until they expire.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// LoginGuard throttles repeated failed logins per username and client.
type LoginGuard interface {
	Check(ctx context.Context, username, clientIP string) error
	RecordFailure(ctx context.Context, username, clientIP string) (bool, error)
	Clear(ctx context.Context, username, clientIP string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Config struct {
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	AllowAdminSignup bool
}

// Service owns accounts and token issuance.
type Service struct {
	users           UserStore
	donors          DonorCreator
	tx              StoreTx
	tokens          TokenIssuer
	trl             TokenRevocationList
	cfg             Config
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	guard           LoginGuard
	metrics         *authmetrics.Metrics
	platformMetrics *platformmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithLoginGuard(guard LoginGuard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPlatformMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) {
		s.platformMetrics = m
	}
}

func New(users UserStore, donors DonorCreator, tx StoreTx, tokens TokenIssuer, trl TokenRevocationList, cfg Config, opts ...Option) *Service {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	s := &Service{users: users, donors: donors, tx: tx, tokens: tokens, trl: trl, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account, and a donor profile for donor accounts, then
// issues a token pair.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	if reg.Password != reg.Password2 {
		return nil, dErrors.New(dErrors.CodeValidation, "Password fields didn't match.").WithDetails("field", "password")
	}
	if err := password.Validate(reg.Password); err != nil {
		return nil, err
	}
	role := id.RoleDonor
	if reg.Role != "" {
		parsed, err := id.ParseRole(reg.Role)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "role must be donor or admin").WithDetails("field", "role")
		}
		role = parsed
	}
	if role == id.RoleAdmin && !s.cfg.AllowAdminSignup {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin registration is disabled")
	}

	hash, err := password.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.UserID(uuid.New()), reg.Username, reg.Email, reg.FirstName, reg.LastName, hash, role, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, "username is required and must be 150 characters or less").
				WithDetails("field", "username")
		}
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.createAccount(txCtx, user, now); err != nil {
			return err
		}
		return s.emit(txCtx, audit.Event{
			UserID:  user.ID,
			Subject: user.Username,
			Action:  string(audit.EventUserRegistered),
			Reason:  string(user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	s.platformMetrics.IncrementUsersRegistered()
	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
		"role", user.Role,
	)

	return s.issuePair(user)
}

func (s *Service) createAccount(ctx context.Context, user *models.User, now time.Time) error {
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeValidation, "A user with that username already exists.").
				WithDetails("field", "username")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	if user.Role != id.RoleDonor {
		return nil
	}
	if err := s.donors.CreateDonor(ctx, donormodels.NewDonor(id.DonorID(uuid.New()), user.ID, now)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor profile")
	}
	return nil
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, username, pw string) (*models.AuthResult, error) {
	if s.guard != nil {
		if err := s.guard.Check(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
			if dErrors.HasCode(err, dErrors.CodeRateLimited) {
				s.metrics.IncrementLogin("locked")
			}
			return nil, err
		}
	}
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user == nil {
		s.failLogin(ctx, id.UserID{}, username)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials.")
	}
	ok, err := password.Verify(pw, user.PasswordHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !ok {
		s.failLogin(ctx, user.ID, username)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials.")
	}
	if !user.Active {
		s.metrics.IncrementLogin("inactive")
		return nil, dErrors.New(dErrors.CodeForbidden, "User account is disabled.")
	}

	s.metrics.IncrementLogin("success")
	if s.guard != nil {
		if err := s.guard.Clear(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures",
				"request_id", requestcontext.RequestID(ctx),
				"username", username,
				"error", err,
			)
		}
	}
	s.emitBestEffort(ctx, audit.Event{UserID: user.ID, Subject: user.Username, Action: string(audit.EventLoginSucceeded)})
	return s.issuePair(user)
}

func (s *Service) failLogin(ctx context.Context, userID id.UserID, username string) {
	s.metrics.IncrementLogin("invalid_credentials")
	s.emitBestEffort(ctx, audit.Event{UserID: userID, Subject: username, Action: string(audit.EventLoginFailed)})
	s.logger.WarnContext(ctx, "login failed",
		"request_id", requestcontext.RequestID(ctx),
		"username", username,
	)
	if s.guard == nil {
		return
	}
	if _, err := s.guard.RecordFailure(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure",
			"request_id", requestcontext.RequestID(ctx),
			"username", username,
			"error", err,
		)
	}
}

// emitBestEffort records an audit event that must not fail the request.
func (s *Service) emitBestEffort(ctx context.Context, event audit.Event) {
	if err := s.emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"error", err,
		)
	}
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, jwttoken.TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return "", err
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.Active {
		return "", dErrors.New(dErrors.CodeForbidden, "User account is disabled.")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	s.metrics.IncrementRefresh()
	s.emitBestEffort(ctx, audit.Event{UserID: user.ID, Action: string(audit.EventTokenRefreshed)})
	return access.Token, nil
}

// Logout revokes the access token on the request and, when given, the
// refresh token it was paired with.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	now := requestcontext.Now(ctx)
	if jti := requestcontext.TokenID(ctx); jti != "" {
		if err := s.revoke(ctx, jti, requestcontext.TokenExpiry(ctx).Sub(now)); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		claims, err := s.tokens.ValidateToken(refreshToken, jwttoken.TokenTypeRefresh)
		if err != nil {
			return err
		}
		if claims.UserID != requestcontext.UserID(ctx).String() {
			return dErrors.New(dErrors.CodeForbidden, "refresh token belongs to another account")
		}
		if err := s.revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(now)); err != nil {
			return err
		}
	}
	s.metrics.IncrementLogout()
	s.emitBestEffort(ctx, audit.Event{UserID: requestcontext.UserID(ctx), Action: string(audit.EventLoggedOut)})
	return nil
}

func (s *Service) revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

// EnsureAdmin creates an admin account unless the username already exists.
// Used to seed the first administrator at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, pw string) (bool, error) {
	if _, err := s.users.FindUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := password.Validate(pw); err != nil {
		return false, err
	}
	hash, err := password.Hash(pw)
	if err != nil {
		return false, err
	}
	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.UserID(uuid.New()), username, "", "", "", hash, id.RoleAdmin, now)
	if err != nil {
		return false, err
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.createAccount(txCtx, user, now); err != nil {
			return err
		}
		return s.emit(txCtx, audit.Event{
			UserID:  user.ID,
			Subject: user.Username,
			Action:  string(audit.EventUserRegistered),
			Reason:  "bootstrap",
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUser returns the account for the authenticated caller.
func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) issuePair(user *models.User) (*models.AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Role, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	return &models.AuthResult{
		User:   user,
		Tokens: models.TokenPair{Access: access.Token, Refresh: refresh.Token},
	}, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, event)
}
