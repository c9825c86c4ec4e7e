package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/email"
	"github.com/ferdiebergado/storyboard/internal/platform/hash"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
	"github.com/ferdiebergado/storyboard/internal/user"
)

var (
	ErrUserNotVerified    = errors.New("auth service: email not verified")
	ErrUserExists         = errors.New("auth service: user already exists")
	ErrInvalidCredentials = errors.New("auth service: invalid credentials")
)

const reasonSignup = "signup"

// Crediter grants credits to a user's balance.
type Crediter interface {
	Credit(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
}

type Service struct {
	repo     Repository
	userSvc  user.Service
	hasher   hash.Hasher
	signer   jwt.Signer
	mailer   email.Mailer
	txMgr    db.TxManager
	crediter Crediter
	cfg      *config.Config
}

var _ AuthService = (*Service)(nil)

type RegisterUserParams struct {
	Email    string
	Password string
}

func (p RegisterUserParams) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskChar),
		slog.String("password", maskChar),
	)
}

type LoginUserParams struct {
	Email    string
	Password string
}

func (p LoginUserParams) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskChar),
		slog.String("password", maskChar),
	)
}

type Session struct {
	AccessToken  string
	RefreshToken string
}

// RegisterUser creates the account, grants the signup credits in the same
// transaction and emails a verification link.
func (s *Service) RegisterUser(ctx context.Context, params RegisterUserParams) (user.User, error) {
	var newUser user.User

	existing, err := s.userSvc.FindByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return newUser, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return newUser, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return newUser, fmt.Errorf("hash password: %w", err)
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.userSvc.Create(txCtx, user.CreateParams{Email: params.Email, PasswordHash: passwordHash})
		if err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				return ErrUserExists
			}
			return err
		}
		newUser = u

		if credits := s.cfg.Billing.SignupCredits; credits > 0 {
			if _, err := s.crediter.Credit(txCtx, u.ID, credits, reasonSignup, u.ID); err != nil {
				return fmt.Errorf("grant signup credits: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return user.User{}, fmt.Errorf("register user: %w", err)
	}

	go s.sendEmail(&HTMLEmail{
		Email:    newUser.Email,
		Subject:  "Verify your email",
		Title:    "Email verification",
		Template: "verification",
		UserID:   newUser.ID,
		URI:      "/auth/verify",
		Audience: AudienceVerify,
	})

	return newUser, nil
}

type HTMLEmail struct {
	Email, Subject, Title, Template, UserID, URI, Audience string
}

func (s *Service) sendEmail(mail *HTMLEmail) {
	slog.Info("Sending email...", "template", mail.Template)

	ttl := s.cfg.Email.VerifyTTL.Duration
	token, err := s.signer.Sign(jwt.Claims{UserID: mail.UserID}, []string{mail.Audience}, ttl)
	if err != nil {
		slog.Error("failed to generate token", "reason", err)
		return
	}

	data := map[string]string{
		"Title":  mail.Title,
		"Header": mail.Subject,
		"Link":   s.cfg.Server.URL + mail.URI + "?token=" + token,
	}
	if err := s.mailer.SendHTML([]string{mail.Email}, mail.Subject, mail.Template, data); err != nil {
		slog.Error("failed to send email", "reason", err)
	}
}

func (s *Service) VerifyUser(ctx context.Context, userID string) error {
	if err := s.repo.Verify(ctx, userID); err != nil {
		return fmt.Errorf("verify user with id %s: %w", userID, err)
	}
	return nil
}

func (s *Service) LoginUser(ctx context.Context, params LoginUserParams) (Session, error) {
	u, err := s.userSvc.FindByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user by email: %w", err)
	}

	ok, err := s.hasher.Verify(params.Password, u.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verify password for user %s: %w", u.ID, err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	if u.VerifiedAt == nil {
		return Session{}, ErrUserNotVerified
	}

	return s.issue(u)
}

// Refresh exchanges a refresh token for a new session. The user is reloaded
// so role changes and deletions take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := verify(s.signer, refreshToken, AudienceRefresh)
	if err != nil {
		return Session{}, err
	}

	u, err := s.userSvc.Find(ctx, claims.UserID)
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	return s.issue(u)
}

func (s *Service) issue(u *user.User) (Session, error) {
	claims := jwt.Claims{UserID: u.ID, Role: u.Role}

	accessToken, err := s.signer.Sign(claims, []string{AudienceAccess}, s.cfg.JWT.TTL.Duration)
	if err != nil {
		return Session{}, fmt.Errorf("sign access token for user %s: %w", u.ID, err)
	}

	refreshToken, err := s.signer.Sign(claims, []string{AudienceRefresh}, s.cfg.JWT.RefreshTTL.Duration)
	if err != nil {
		return Session{}, fmt.Errorf("sign refresh token for user %s: %w", u.ID, err)
	}

	return Session{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// SendPasswordReset mails a reset link when the address belongs to a user.
// Unknown addresses are ignored so the endpoint does not reveal accounts.
func (s *Service) SendPasswordReset(ctx context.Context, address string) error {
	u, err := s.userSvc.FindByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	go s.sendEmail(&HTMLEmail{
		Email:    u.Email,
		Subject:  "Reset your password",
		Title:    "Password reset",
		Template: "reset_password",
		UserID:   u.ID,
		URI:      "/auth/reset",
		Audience: AudienceReset,
	})
	return nil
}

type ResetPasswordParams struct {
	UserID      string
	NewPassword string
}

func (s *Service) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	newHash, err := s.hasher.Hash(params.NewPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.repo.ChangePassword(ctx, params.UserID, newHash); err != nil {
		return fmt.Errorf("change password for user %s: %w", params.UserID, err)
	}

	return nil
}

func NewService(repo Repository, userSvc user.Service, providers *Providers, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		userSvc:  userSvc,
		hasher:   providers.Hasher,
		signer:   providers.Signer,
		mailer:   providers.Mailer,
		txMgr:    providers.TxMgr,
		crediter: providers.Crediter,
		cfg:      cfg,
	}
}
