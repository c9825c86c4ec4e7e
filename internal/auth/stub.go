package auth

import (
	"context"
	"errors"

	"github.com/ferdiebergado/storyboard/internal/user"
)

type StubService struct {
	RegisterUserFunc      func(ctx context.Context, params RegisterUserParams) (user.User, error)
	VerifyUserFunc        func(ctx context.Context, userID string) error
	LoginUserFunc         func(ctx context.Context, params LoginUserParams) (Session, error)
	RefreshFunc           func(ctx context.Context, refreshToken string) (Session, error)
	SendPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc     func(ctx context.Context, params ResetPasswordParams) error
}

var _ AuthService = (*StubService)(nil)

func (s *StubService) RegisterUser(ctx context.Context, params RegisterUserParams) (user.User, error) {
	if s.RegisterUserFunc == nil {
		return user.User{}, errors.New("RegisterUser not implemented by stub")
	}
	return s.RegisterUserFunc(ctx, params)
}

func (s *StubService) VerifyUser(ctx context.Context, userID string) error {
	if s.VerifyUserFunc == nil {
		return errors.New("VerifyUser not implemented by stub")
	}
	return s.VerifyUserFunc(ctx, userID)
}

func (s *StubService) LoginUser(ctx context.Context, params LoginUserParams) (Session, error) {
	if s.LoginUserFunc == nil {
		return Session{}, errors.New("LoginUser not implemented by stub")
	}
	return s.LoginUserFunc(ctx, params)
}

func (s *StubService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if s.RefreshFunc == nil {
		return Session{}, errors.New("Refresh not implemented by stub")
	}
	return s.RefreshFunc(ctx, refreshToken)
}

func (s *StubService) SendPasswordReset(ctx context.Context, email string) error {
	if s.SendPasswordResetFunc == nil {
		return errors.New("SendPasswordReset not implemented by stub")
	}
	return s.SendPasswordResetFunc(ctx, email)
}

func (s *StubService) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	if s.ResetPasswordFunc == nil {
		return errors.New("ResetPassword not implemented by stub")
	}
	return s.ResetPasswordFunc(ctx, params)
}

type StubRepo struct {
	VerifyFunc         func(ctx context.Context, userID string) error
	ChangePasswordFunc func(ctx context.Context, userID, passwordHash string) error
}

var _ Repository = (*StubRepo)(nil)

func (r *StubRepo) Verify(ctx context.Context, userID string) error {
	if r.VerifyFunc == nil {
		return errors.New("Verify not implemented by stub")
	}
	return r.VerifyFunc(ctx, userID)
}

func (r *StubRepo) ChangePassword(ctx context.Context, userID, passwordHash string) error {
	if r.ChangePasswordFunc == nil {
		return errors.New("ChangePassword not implemented by stub")
	}
	return r.ChangePasswordFunc(ctx, userID, passwordHash)
}

type StubCrediter struct {
	CreditFunc func(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
}

var _ Crediter = (*StubCrediter)(nil)

func (c *StubCrediter) Credit(ctx context.Context, userID string, amount int, reason, ref string) (int, error) {
	if c.CreditFunc == nil {
		return 0, errors.New("Credit not implemented by stub")
	}
	return c.CreditFunc(ctx, userID, amount, reason, ref)
}
