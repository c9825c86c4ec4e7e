package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	Find(ctx context.Context, userID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// IdentityFunc returns the id of the caller. It is provided by the auth
// package so that user does not import it.
type IdentityFunc func(ctx context.Context) (string, error)

type Handler struct {
	svc      Service
	identity IdentityFunc
}

func NewHandler(svc Service, identity IdentityFunc) *Handler {
	return &Handler{svc: svc, identity: identity}
}

type UserData struct {
	ID         string     `json:"id,omitempty"`
	Email      string     `json:"email,omitempty"`
	Role       string     `json:"role,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

type ListResponse struct {
	Users []UserData `json:"users,omitempty"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.identity(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	u, err := h.svc.Find(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.RespondNotFound(w, err, message.NotFound, nil)
			return
		}
		web.RespondInternalServerError(w, err)
		return
	}

	data := toUserData(*u)
	web.RespondOK(w, nil, &data)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}

	data := make([]UserData, 0, len(users))
	for _, u := range users {
		data = append(data, toUserData(u))
	}

	web.RespondOK(w, nil, &ListResponse{Users: data})
}

func toUserData(u User) UserData {
	return UserData{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
