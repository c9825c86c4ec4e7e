package scene

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

const (
	MsgUpdated   = "Scene updated."
	MsgReordered = "Scenes reordered."
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (Scene, error)
	List(ctx context.Context, userID, storyID string) ([]Scene, error)
	ListByStory(ctx context.Context, storyID string) ([]Scene, error)
	Get(ctx context.Context, userID, sceneID string) (*Scene, error)
	Update(ctx context.Context, userID, sceneID string, params UpdateParams) (*Scene, error)
	Reorder(ctx context.Context, userID, sceneID string, position int) ([]Scene, error)
	SetImage(ctx context.Context, sceneID, imageURL string) error
	SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type SceneData struct {
	ID             string    `json:"id"`
	StoryID        string    `json:"story_id"`
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Start          int       `json:"start"`
	End            int       `json:"end"`
	Prompt         string    `json:"prompt"`
	ImageURL       string    `json:"image_url,omitempty"`
	Characters     []string  `json:"characters"`
	AnchorSentence *int      `json:"anchor_sentence,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToData(s Scene) SceneData {
	return SceneData{
		ID:             s.ID,
		StoryID:        s.StoryID,
		Number:         s.Number,
		Title:          s.Title,
		Summary:        s.Summary,
		Start:          s.Start,
		End:            s.End,
		Prompt:         s.Prompt,
		ImageURL:       s.ImageURL,
		Characters:     nonNil(s.Characters),
		AnchorSentence: s.AnchorSentence,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type ListResponse struct {
	Scenes []SceneData `json:"scenes"`
}

func toList(scenes []Scene) *ListResponse {
	data := make([]SceneData, 0, len(scenes))
	for _, s := range scenes {
		data = append(data, ToData(s))
	}
	return &ListResponse{Scenes: data}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	scenes, err := h.svc.List(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	web.RespondOK(w, nil, toList(scenes))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	sc, err := h.svc.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	data := ToData(*sc)
	web.RespondOK(w, nil, &data)
}

type UpdateRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Summary *string `json:"summary,omitempty" validate:"omitnil,max=4000"`
	Prompt  *string `json:"prompt,omitempty" validate:"omitnil,max=4000"`
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

	sc, err := h.svc.Update(r.Context(), userID, r.PathValue("id"), UpdateParams(req))
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgUpdated
	data := ToData(*sc)
	web.RespondOK(w, &msg, &data)
}

type ReorderRequest struct {
	Position int `json:"position" validate:"required,min=1"`
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[ReorderRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	scenes, err := h.svc.Reorder(r.Context(), userID, r.PathValue("id"), req.Position)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgReordered
	web.RespondOK(w, &msg, toList(scenes))
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		web.RespondNotFound(w, err, message.NotFound, nil)
	case errors.Is(err, ErrPosition):
		web.RespondUnprocessableEntity(w, err, message.InvalidInput, map[string]string{"position": "out of range"})
	default:
		web.RespondInternalServerError(w, err)
	}
}
