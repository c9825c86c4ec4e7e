package character

import (
	"context"
	"errors"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

const (
	MsgCreated       = "Character created."
	MsgUpdated       = "Character updated."
	MsgStateAdded    = "Appearance state added."
	MsgDuplicateName = "A character with that name already exists in this story."
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (Character, error)
	Add(ctx context.Context, userID string, params CreateParams) (Character, error)
	List(ctx context.Context, userID, storyID string) ([]Character, error)
	ListByStory(ctx context.Context, storyID string) ([]Character, error)
	Update(ctx context.Context, userID, characterID string, params UpdateParams) (*Character, error)
	AddState(ctx context.Context, userID, characterID string, params StateParams) (*Character, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type CharacterData struct {
	ID          string            `json:"id"`
	StoryID     string            `json:"story_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	States      []AppearanceState `json:"states"`
}

func ToData(c Character) CharacterData {
	states := c.States
	if states == nil {
		states = []AppearanceState{}
	}
	return CharacterData{
		ID:          c.ID,
		StoryID:     c.StoryID,
		Name:        c.Name,
		Description: c.Description,
		States:      states,
	}
}

type ListResponse struct {
	Characters []CharacterData `json:"characters"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	characters, err := h.svc.List(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]CharacterData, 0, len(characters))
	for _, c := range characters {
		data = append(data, ToData(c))
	}
	web.RespondOK(w, nil, &ListResponse{Characters: data})
}

type CreateRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[CreateRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	params := CreateParams{StoryID: r.PathValue("id"), Name: req.Name, Description: req.Description}
	c, err := h.svc.Add(r.Context(), userID, params)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgCreated
	data := ToData(c)
	web.RespondCreated(w, &msg, &data)
}

type UpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[UpdateRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	c, err := h.svc.Update(r.Context(), userID, r.PathValue("id"), UpdateParams(req))
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgUpdated
	data := ToData(*c)
	web.RespondOK(w, &msg, &data)
}

type StateRequest struct {
	Label       string `json:"label" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=2000"`
	FromScene   int    `json:"from_scene" validate:"required,min=1"`
}

func (h *Handler) AddState(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[StateRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	c, err := h.svc.AddState(r.Context(), userID, r.PathValue("id"), StateParams(req))
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgStateAdded
	data := ToData(*c)
	web.RespondCreated(w, &msg, &data)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		web.RespondNotFound(w, err, message.NotFound, nil)
	case errors.Is(err, ErrDuplicateName):
		web.RespondConflict(w, err, MsgDuplicateName, nil)
	default:
		web.RespondInternalServerError(w, err)
	}
}
