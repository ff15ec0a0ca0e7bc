package service

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/otp"
	"github.com/iliyamo/regional-streaming/internal/repository"
	"github.com/iliyamo/regional-streaming/internal/utils"
)

// Login types.
const (
	LoginEmail = "email"
	LoginPhone = "phone"
)

// AuthConfig holds the token and OTP settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	OTPTTL         time.Duration
}

// LoginInput is a login attempt. Identifier is an email or a phone number
// depending on LoginType.
type LoginInput struct {
	Identifier string
	LoginType  string
	Password   string
	OTP        string
}

// RegisterInput creates an email account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// AuthResult is a signed-in user with a fresh token pair. Created is set
// when the login provisioned a new account.
type AuthResult struct {
	User     model.User
	Profiles []model.UserProfile
	Access   utils.AccessToken
	Refresh  utils.RefreshToken
	Created  bool
}

// AuthService issues and revokes credentials.
type AuthService interface {
	SendOTP(ctx context.Context, phone string) (string, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Refresh(ctx context.Context, raw string) (AuthResult, error)
	RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error)
	Logout(ctx context.Context, raw string) error
	LogoutAll(ctx context.Context, userID string) error
	Me(ctx context.Context, userID string) (model.User, []model.UserProfile, error)
	SetUserStatus(ctx context.Context, actor Actor, userID, status string) (model.User, error)
}

type authService struct {
	db     *sql.DB
	codes  otp.Store
	cfg    AuthConfig
	now    Clock
	logger zerolog.Logger
}

// NewAuthService returns the auth service. codes holds pending OTPs.
func NewAuthService(db *sql.DB, codes otp.Store, cfg AuthConfig, now Clock, logger zerolog.Logger) AuthService {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	return &authService{
		db:     db,
		codes:  codes,
		cfg:    cfg,
		now:    now,
		logger: logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) SendOTP(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !utils.ValidPhone(phone) {
		return "", validationErr("Invalid phone number")
	}
	code, err := utils.NewOTP()
	if err != nil {
		return "", internalErr("generate otp", err)
	}
	if err := s.codes.Save(ctx, phone, code, s.cfg.OTPTTL); err != nil {
		return "", &Error{Kind: KindUpstream, Msg: "Failed to send OTP", Err: err}
	}
	// SMS delivery is simulated by this log line.
	s.logger.Info().Str("phone", maskPhone(phone)).Dur("ttl", s.cfg.OTPTTL).Msg("otp sent")
	return code, nil
}

func maskPhone(p string) string {
	if len(p) <= 4 {
		return p
	}
	return strings.Repeat("*", len(p)-4) + p[len(p)-4:]
}

func (s *authService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if in.Identifier == "" {
		return AuthResult{}, validationErr("Identifier is required")
	}
	switch strings.ToLower(in.LoginType) {
	case LoginEmail:
		return s.loginEmail(ctx, in)
	case LoginPhone:
		return s.loginPhone(ctx, in)
	}
	return AuthResult{}, validationErr("loginType must be email or phone")
}

func (s *authService) loginEmail(ctx context.Context, in LoginInput) (AuthResult, error) {
	u, err := repository.NewUserRepo(s.db).GetByEmail(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, notFoundErr("User not found")
		}
		return AuthResult{}, internalErr("load user", err)
	}
	if u.PasswordHash != "" && !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return AuthResult{}, unauthorizedErr("Invalid credentials")
	}
	return s.signIn(ctx, u, false)
}

func (s *authService) loginPhone(ctx context.Context, in LoginInput) (AuthResult, error) {
	phone := in.Identifier
	if !utils.ValidPhone(phone) {
		return AuthResult{}, validationErr("Invalid phone number")
	}
	if !utils.ValidOTP(in.OTP) {
		return AuthResult{}, validationErr("OTP must be 6 digits")
	}
	ok, err := s.codes.Verify(ctx, phone, in.OTP)
	if err != nil {
		return AuthResult{}, &Error{Kind: KindUpstream, Msg: "Failed to verify OTP", Err: err}
	}
	if !ok {
		return AuthResult{}, unauthorizedErr("Invalid or expired OTP")
	}

	users := repository.NewUserRepo(s.db)
	u, err := users.GetByPhone(ctx, phone)
	if err == nil {
		return s.signIn(ctx, u, false)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, internalErr("load user", err)
	}

	u, err = s.provisionPhoneUser(ctx, phone)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent login created the account first.
		if u, err = users.GetByPhone(ctx, phone); err != nil {
			return AuthResult{}, internalErr("load user", err)
		}
		return s.signIn(ctx, u, false)
	}
	if err != nil {
		return AuthResult{}, internalErr("create user", err)
	}
	s.logger.Info().Str("user_id", u.ID).Msg("user provisioned from phone login")
	return s.signIn(ctx, u, true)
}

// provisionPhoneUser creates a verified USER and its default profile in
// one transaction.
func (s *authService) provisionPhoneUser(ctx context.Context, phone string) (model.User, error) {
	now := s.now()
	u := model.User{
		ID:         newID(),
		Phone:      &phone,
		Role:       model.RoleUser,
		Status:     model.UserStatusActive,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewUserRepo(tx).Create(ctx, &u); err != nil {
			return err
		}
		return repository.NewProfileRepo(tx).Create(ctx, defaultProfile(u.ID, now))
	})
	return u, err
}

func defaultProfile(userID string, now time.Time) *model.UserProfile {
	return &model.UserProfile{
		ID:          newID(),
		UserID:      userID,
		Name:        model.DefaultProfileName,
		Preferences: map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return AuthResult{}, validationErr("Invalid email")
	}
	if len(in.Password) < 8 {
		return AuthResult{}, validationErr("Password must be at least 8 characters")
	}
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleCreator {
		return AuthResult{}, validationErr("Role must be USER or CREATOR")
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return AuthResult{}, validationErr("Password must be at most 72 bytes")
	}
	if err != nil {
		return AuthResult{}, internalErr("hash password", err)
	}

	now := s.now()
	u := model.User{
		ID:           newID(),
		Email:        &email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewUserRepo(tx).Create(ctx, &u); err != nil {
			return err
		}
		return repository.NewProfileRepo(tx).Create(ctx, defaultProfile(u.ID, now))
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, duplicateErr("Email already registered")
		}
		return AuthResult{}, internalErr("create user", err)
	}
	s.logger.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("user registered")
	return s.signIn(ctx, u, true)
}

// signIn checks the account state and issues a token pair.
func (s *authService) signIn(ctx context.Context, u model.User, created bool) (AuthResult, error) {
	if !u.CanLogin() {
		return AuthResult{}, forbiddenErr("Account " + u.Status)
	}
	profiles, err := repository.NewProfileRepo(s.db).ListByUser(ctx, u.ID)
	if err != nil {
		return AuthResult{}, internalErr("list profiles", err)
	}
	res := AuthResult{User: u, Profiles: profiles, Created: created}
	if res.Access, res.Refresh, err = s.issue(ctx, u); err != nil {
		return AuthResult{}, err
	}
	return res, nil
}

func (s *authService) issue(ctx context.Context, u model.User) (utils.AccessToken, utils.RefreshToken, error) {
	now := s.now()
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin, now)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, internalErr("issue access failed", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays, now)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, internalErr("issue refresh failed", err)
	}
	if err := repository.NewTokenRepo(s.db).StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp, now); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, internalErr("save refresh failed", err)
	}
	return access, refresh, nil
}

// userForRefresh resolves a live refresh token to an account that may
// still sign in.
func (s *authService) userForRefresh(ctx context.Context, raw string) (model.User, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, "", validationErr("refresh_token required")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := repository.NewTokenRepo(s.db).ValidateRefresh(ctx, hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, "", unauthorizedErr("invalid refresh")
		}
		return model.User{}, "", internalErr("validate refresh", err)
	}
	u, err := repository.NewUserRepo(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, "", unauthorizedErr("invalid refresh")
		}
		return model.User{}, "", internalErr("load user failed", err)
	}
	if !u.CanLogin() {
		return model.User{}, "", forbiddenErr("Account " + u.Status)
	}
	return u, hash, nil
}

func (s *authService) Refresh(ctx context.Context, raw string) (AuthResult, error) {
	u, hash, err := s.userForRefresh(ctx, raw)
	if err != nil {
		return AuthResult{}, err
	}
	if err := repository.NewTokenRepo(s.db).RevokeByHash(ctx, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, unauthorizedErr("invalid refresh")
		}
		return AuthResult{}, internalErr("revoke refresh", err)
	}
	return s.signIn(ctx, u, false)
}

func (s *authService) RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error) {
	u, _, err := s.userForRefresh(ctx, raw)
	if err != nil {
		return utils.AccessToken{}, err
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin, s.now())
	if err != nil {
		return utils.AccessToken{}, internalErr("issue access failed", err)
	}
	return access, nil
}

func (s *authService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return validationErr("refresh_token required")
	}
	tokens := repository.NewTokenRepo(s.db)
	hash := utils.HashRefreshRaw(raw)
	if _, err := tokens.ValidateRefresh(ctx, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorizedErr("invalid refresh token")
		}
		return internalErr("validate refresh", err)
	}
	if err := tokens.RevokeByHash(ctx, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorizedErr("invalid refresh token")
		}
		return internalErr("logout failed", err)
	}
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return unauthorizedErr("unauthorized")
	}
	if err := repository.NewTokenRepo(s.db).RevokeAllForUser(ctx, userID, s.now()); err != nil {
		return internalErr("logout failed", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (model.User, []model.UserProfile, error) {
	u, err := repository.NewUserRepo(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, nil, notFoundErr("User not found")
		}
		return model.User{}, nil, internalErr("load user", err)
	}
	profiles, err := repository.NewProfileRepo(s.db).ListByUser(ctx, userID)
	if err != nil {
		return model.User{}, nil, internalErr("list profiles", err)
	}
	return u, profiles, nil
}

func (s *authService) SetUserStatus(ctx context.Context, actor Actor, userID, status string) (model.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !model.ValidUserStatus(status) {
		return model.User{}, validationErr("Invalid status")
	}
	if !actor.IsAdmin() {
		return model.User{}, forbiddenErr("forbidden")
	}
	if userID == actor.ID {
		return model.User{}, validationErr("Cannot change your own status")
	}

	now := s.now()
	var u model.User
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewUserRepo(tx)
		if err := users.SetStatus(ctx, userID, status, now); err != nil {
			return err
		}
		if status != model.UserStatusActive {
			if err := repository.NewTokenRepo(tx).RevokeAllForUser(ctx, userID, now); err != nil {
				return err
			}
		}
		var err error
		u, err = users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, notFoundErr("User not found")
		}
		return model.User{}, internalErr("set user status", err)
	}
	s.logger.Info().Str("user_id", userID).Str("status", status).Str("actor_id", actor.ID).Msg("user status changed")
	return u, nil
}
