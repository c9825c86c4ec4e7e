package auth_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/model"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/email"
	"github.com/ferdiebergado/storyboard/internal/platform/hash"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
	"github.com/ferdiebergado/storyboard/internal/user"
)

const (
	testEmail = "test@example.com"
	testPass  = "password123"
)

type sentMail struct {
	to       string
	template string
	link     string
}

func newTestService(t *testing.T, userSvc user.Service, crediter auth.Crediter, signer jwt.Signer) (*auth.Service, <-chan sentMail) {
	t.Helper()

	sent := make(chan sentMail, 1)
	mailer := &email.StubMailer{
		SendHTMLFunc: func(to []string, _, tmplName string, data map[string]string) error {
			sent <- sentMail{to: to[0], template: tmplName, link: data["Link"]}
			return nil
		},
	}

	hasher := &hash.StubHasher{
		HashFunc: func(plain string) (string, error) { return "hashed:" + plain, nil },
		VerifyFunc: func(plain, hashed string) (bool, error) {
			return hashed == "hashed:"+plain, nil
		},
	}

	if signer == nil {
		signer = &jwt.StubSigner{
			SignFunc: func(claims jwt.Claims, audience []string, _ time.Duration) (string, error) {
				return audience[0] + ":" + claims.UserID, nil
			},
		}
	}

	cfg := config.Defaults()
	providers := &auth.Providers{
		Hasher:   hasher,
		Signer:   signer,
		Mailer:   mailer,
		TxMgr:    &db.StubTxManager{},
		Crediter: crediter,
	}
	return auth.NewService(&auth.StubRepo{}, userSvc, providers, cfg), sent
}

func TestService_RegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("creates the user and grants signup credits", func(t *testing.T) {
		t.Parallel()

		userSvc := &user.StubService{
			FindByEmailFunc: func(_ context.Context, _ string) (*user.User, error) {
				return nil, user.ErrNotFound
			},
			CreateFunc: func(_ context.Context, params user.CreateParams) (user.User, error) {
				if params.PasswordHash != "hashed:"+testPass {
					t.Errorf("params.PasswordHash = %q, want the hashed password", params.PasswordHash)
				}
				return user.User{Model: model.Model{ID: "u1"}, Email: params.Email}, nil
			},
		}

		var granted int
		crediter := &auth.StubCrediter{
			CreditFunc: func(_ context.Context, userID string, amount int, _, _ string) (int, error) {
				if userID != "u1" {
					t.Errorf("credited user = %q, want: %q", userID, "u1")
				}
				granted = amount
				return amount, nil
			},
		}

		svc, sent := newTestService(t, userSvc, crediter, nil)
		u, err := svc.RegisterUser(context.Background(), auth.RegisterUserParams{Email: testEmail, Password: testPass})
		if err != nil {
			t.Fatalf("svc.RegisterUser returned an error: %v", err)
		}
		if u.ID != "u1" {
			t.Errorf("u.ID = %q, want: %q", u.ID, "u1")
		}
		if want := config.Defaults().Billing.SignupCredits; granted != want {
			t.Errorf("granted = %d, want: %d", granted, want)
		}

		select {
		case mail := <-sent:
			if mail.to != testEmail || mail.template != "verification" {
				t.Errorf("mail = %+v, want a verification email to %s", mail, testEmail)
			}
		case <-time.After(time.Second):
			t.Fatal("verification email was not sent")
		}
	})

	t.Run("rejects a registered email", func(t *testing.T) {
		t.Parallel()

		userSvc := &user.StubService{
			FindByEmailFunc: func(_ context.Context, email string) (*user.User, error) {
				return &user.User{Email: email}, nil
			},
		}

		svc, _ := newTestService(t, userSvc, &auth.StubCrediter{}, nil)
		_, err := svc.RegisterUser(context.Background(), auth.RegisterUserParams{Email: testEmail, Password: testPass})
		if !errors.Is(err, auth.ErrUserExists) {
			t.Errorf("svc.RegisterUser = %v, want: %v", err, auth.ErrUserExists)
		}
	})

	t.Run("fails when credits cannot be granted", func(t *testing.T) {
		t.Parallel()

		userSvc := &user.StubService{
			FindByEmailFunc: func(_ context.Context, _ string) (*user.User, error) { return nil, user.ErrNotFound },
			CreateFunc: func(_ context.Context, params user.CreateParams) (user.User, error) {
				return user.User{Model: model.Model{ID: "u1"}, Email: params.Email}, nil
			},
		}
		errLedger := errors.New("ledger down")
		crediter := &auth.StubCrediter{
			CreditFunc: func(context.Context, string, int, string, string) (int, error) { return 0, errLedger },
		}

		svc, _ := newTestService(t, userSvc, crediter, nil)
		_, err := svc.RegisterUser(context.Background(), auth.RegisterUserParams{Email: testEmail, Password: testPass})
		if !errors.Is(err, errLedger) {
			t.Errorf("svc.RegisterUser = %v, want: %v", err, errLedger)
		}
	})
}

func TestService_LoginUser(t *testing.T) {
	t.Parallel()

	now := time.Now()
	verified := &user.User{Model: model.Model{ID: "u1"}, Email: testEmail, PasswordHash: "hashed:" + testPass, Role: user.RoleAdmin, VerifiedAt: &now}
	unverified := &user.User{Model: model.Model{ID: "u2"}, Email: testEmail, PasswordHash: "hashed:" + testPass}

	tests := []struct {
		name     string
		found    *user.User
		password string
		wantErr  error
	}{
		{"verified user", verified, testPass, nil},
		{"wrong password", verified, "nope", auth.ErrInvalidCredentials},
		{"unverified user", unverified, testPass, auth.ErrUserNotVerified},
		{"unknown user", nil, testPass, auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userSvc := &user.StubService{
				FindByEmailFunc: func(_ context.Context, _ string) (*user.User, error) {
					if tt.found == nil {
						return nil, user.ErrNotFound
					}
					return tt.found, nil
				},
			}

			var audiences []string
			signer := &jwt.StubSigner{
				SignFunc: func(claims jwt.Claims, audience []string, _ time.Duration) (string, error) {
					if claims.Role != tt.found.Role {
						t.Errorf("claims.Role = %q, want: %q", claims.Role, tt.found.Role)
					}
					audiences = append(audiences, audience...)
					return "token", nil
				},
			}

			svc, _ := newTestService(t, userSvc, &auth.StubCrediter{}, signer)
			session, err := svc.LoginUser(context.Background(), auth.LoginUserParams{Email: testEmail, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("svc.LoginUser = %v, want: %v", err, tt.wantErr)
			}

			if tt.wantErr == nil {
				if session.AccessToken == "" || session.RefreshToken == "" {
					t.Errorf("session = %+v, want both tokens", session)
				}
				want := []string{auth.AudienceAccess, auth.AudienceRefresh}
				if !slices.Equal(audiences, want) {
					t.Errorf("audiences = %v, want: %v", audiences, want)
				}
			}
		})
	}
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	signer := &jwt.StubSigner{
		VerifyFunc: func(string) (*jwt.Claims, error) {
			return &jwt.Claims{UserID: "u1", Audience: []string{auth.AudienceAccess}}, nil
		},
	}

	svc, _ := newTestService(t, &user.StubService{}, &auth.StubCrediter{}, signer)
	if _, err := svc.Refresh(context.Background(), "token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("svc.Refresh = %v, want: %v", err, auth.ErrInvalidToken)
	}
}

func TestService_SendPasswordReset_UnknownEmail(t *testing.T) {
	t.Parallel()

	userSvc := &user.StubService{
		FindByEmailFunc: func(_ context.Context, _ string) (*user.User, error) { return nil, user.ErrNotFound },
	}

	svc, sent := newTestService(t, userSvc, &auth.StubCrediter{}, nil)
	if err := svc.SendPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("svc.SendPasswordReset returned an error: %v", err)
	}

	select {
	case mail := <-sent:
		t.Errorf("unexpected mail %+v", mail)
	case <-time.After(50 * time.Millisecond):
	}
}
