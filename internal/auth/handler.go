package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/security"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/user"
)

const maskChar = "*"

type AuthService interface {
	RegisterUser(ctx context.Context, params RegisterUserParams) (user.User, error)
	VerifyUser(ctx context.Context, userID string) error
	LoginUser(ctx context.Context, params LoginUserParams) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, params ResetPasswordParams) error
}

type Handler struct {
	svc   AuthService
	cfg   *config.Config
	baker security.Baker
}

func NewHandler(svc AuthService, cfg *config.Config, baker security.Baker) *Handler {
	return &Handler{
		svc:   svc,
		cfg:   cfg,
		baker: baker,
	}
}

type RegisterUserRequest struct {
	Email           string `json:"email,omitempty" validate:"required,email"`
	Password        string `json:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (r RegisterUserRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskChar),
		slog.String("password", maskChar),
		slog.String("password_confirm", maskChar),
	)
}

type RegisterUserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	req, err := web.ParamsFromContext[RegisterUserRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	params := RegisterUserParams{
		Email:    req.Email,
		Password: req.Password,
	}
	u, err := h.svc.RegisterUser(r.Context(), params)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			web.RespondConflict(w, err, MsgUserExists, nil)
			return
		}

		web.RespondInternalServerError(w, err)
		return
	}

	msg := MsgRegisterSuccess
	data := &RegisterUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	web.RespondCreated(w, &msg, data)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	if err := h.svc.VerifyUser(r.Context(), userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			web.RespondNotFound(w, err, message.NotFound, nil)
			return
		}
		web.RespondInternalServerError(w, err)
		return
	}

	msg := MsgVerifySuccess
	web.RespondOK(w, &msg, &struct{}{})
}

type UserLoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (r UserLoginRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskChar),
		slog.String("password", maskChar),
	)
}

type UserLoginResponse struct {
	AccessToken string `json:"access_token,omitempty"`
}

func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	req, err := web.ParamsFromContext[UserLoginRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	session, err := h.svc.LoginUser(r.Context(), LoginUserParams(req))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserNotVerified) {
			web.RespondUnauthorized(w, err, message.InvalidUser, nil)
			return
		}

		web.RespondInternalServerError(w, err)
		return
	}

	h.startSession(w, session, MsgLoggedIn)
}

// RefreshToken is mounted behind the CSRF guard, which checks the
// double-submitted token before the refresh cookie is trusted.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie(h.cfg.Cookie.Name)
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	session, err := h.svc.Refresh(r.Context(), refreshCookie.Value)
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	h.startSession(w, session, MsgRefreshed)
}

func (h *Handler) startSession(w http.ResponseWriter, session Session, msg string) {
	cookieCfg := h.cfg.Cookie
	http.SetCookie(w, security.NewSecureCookie(cookieCfg.Name, session.RefreshToken, cookieCfg.MaxAge.Duration))

	csrfCookie, err := h.baker.Bake()
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}
	http.SetCookie(w, csrfCookie)

	data := &UserLoginResponse{AccessToken: session.AccessToken}
	web.RespondOK(w, &msg, data)
}

func (h *Handler) LogoutUser(w http.ResponseWriter, r *http.Request) {
	cookieName := h.cfg.Cookie.Name
	if _, err := r.Cookie(cookieName); err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	http.SetCookie(w, security.NewSecureCookie(cookieName, "", -1))

	msg := MsgLoggedOut
	web.RespondOK(w, &msg, &struct{}{})
}

type ForgotPasswordRequest struct {
	Email string `json:"email,omitempty" validate:"required,email"`
}

func (r ForgotPasswordRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskChar),
	)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, err := web.ParamsFromContext[ForgotPasswordRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	if err := h.svc.SendPasswordReset(r.Context(), req.Email); err != nil {
		web.RespondInternalServerError(w, err)
		return
	}

	msg := message.ResetSent
	web.RespondOK(w, &msg, &struct{}{})
}

type ResetPasswordRequest struct {
	NewPassword    string `json:"new_password,omitempty" validate:"required,min=8"`
	RepeatPassword string `json:"repeat_password,omitempty" validate:"required,eqfield=NewPassword"`
}

func (r ResetPasswordRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("new_password", maskChar),
		slog.String("repeat_password", maskChar),
	)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, err := UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[ResetPasswordRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	params := ResetPasswordParams{
		UserID:      userID,
		NewPassword: req.NewPassword,
	}
	if err := h.svc.ResetPassword(r.Context(), params); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			web.RespondUnauthorized(w, err, message.InvalidUser, nil)
			return
		}
		web.RespondInternalServerError(w, err)
		return
	}

	msg := message.ResetSuccess
	web.RespondOK(w, &msg, &struct{}{})
}
