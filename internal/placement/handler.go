package placement

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

const (
	MsgMoved         = "Scene moved."
	MsgUndone        = "Move undone."
	MsgRedone        = "Move redone."
	MsgContinuity    = "Scenes must stay in story order."
	MsgNothingToUndo = "There is nothing to undo."
	MsgNothingToRedo = "There is nothing to redo."
)

type Service interface {
	Open(ctx context.Context, userID, storyID string) (*View, error)
	Move(ctx context.Context, userID, storyID, sceneID string, sentence int) (*View, error)
	Undo(ctx context.Context, userID, storyID string) (*View, error)
	Redo(ctx context.Context, userID, storyID string) (*View, error)
}

var _ Service = (*Editor)(nil)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type MoveRequest struct {
	SceneID  string `json:"scene_id" validate:"required"`
	Sentence *int   `json:"sentence" validate:"required,min=0"`
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	view, err := h.svc.Open(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	web.RespondOK(w, nil, view)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[MoveRequest](r.Context())
	if err != nil || req.Sentence == nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	view, err := h.svc.Move(r.Context(), userID, r.PathValue("id"), req.SceneID, *req.Sentence)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgMoved
	web.RespondOK(w, &msg, view)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.svc.Undo, MsgUndone)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.svc.Redo, MsgRedone)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, userID, storyID string) (*View, error), msg string,
) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	view, err := fn(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	web.RespondOK(w, &msg, view)
}

func respondError(w http.ResponseWriter, err error) {
	var contErr *ContinuityError
	switch {
	case errors.As(err, &contErr):
		errs := map[string]string{
			"scene_id":        contErr.SceneID,
			"conflict_scene":  contErr.Conflict.SceneID,
			"conflict_number": strconv.Itoa(contErr.Conflict.Number),
			"conflict_anchor": strconv.Itoa(contErr.Conflict.Sentence),
		}
		web.RespondConflict(w, err, MsgContinuity, errs)
	case errors.Is(err, ErrNotFound):
		web.RespondNotFound(w, err, message.NotFound, nil)
	case errors.Is(err, ErrUnknownScene):
		web.RespondUnprocessableEntity(w, err, message.InvalidInput, map[string]string{"scene_id": "unknown scene"})
	case errors.Is(err, ErrSentenceRange):
		web.RespondUnprocessableEntity(w, err, message.InvalidInput, map[string]string{"sentence": "out of range"})
	case errors.Is(err, ErrNothingToUndo):
		web.RespondConflict(w, err, MsgNothingToUndo, nil)
	case errors.Is(err, ErrNothingToRedo):
		web.RespondConflict(w, err, MsgNothingToRedo, nil)
	default:
		web.RespondInternalServerError(w, err)
	}
}
