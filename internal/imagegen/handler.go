package imagegen

import (
	"context"
	"errors"
	"net/http"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/billing"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
	"github.com/ferdiebergado/storyboard/internal/scene"
)

const MsgRegenerated = "Scene image regenerated."

type Regenerator interface {
	Regenerate(ctx context.Context, userID, sceneID, prompt string) (*Result, error)
}

var _ Regenerator = (*Service)(nil)

type Handler struct {
	svc Regenerator
}

func NewHandler(svc Regenerator) *Handler {
	return &Handler{svc: svc}
}

type RegenerateRequest struct {
	Prompt string `json:"prompt,omitempty" validate:"max=4000"`
}

type RegenerateResponse struct {
	Scene   scene.SceneData `json:"scene"`
	Balance int             `json:"balance"`
}

func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[RegenerateRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	res, err := h.svc.Regenerate(r.Context(), userID, r.PathValue("id"), req.Prompt)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgRegenerated
	web.RespondOK(w, &msg, &RegenerateResponse{Scene: scene.ToData(*res.Scene), Balance: res.Balance})
}

func respondError(w http.ResponseWriter, err error) {
	var statusErr *functions.StatusError
	switch {
	case errors.Is(err, scene.ErrNotFound):
		web.RespondNotFound(w, err, message.NotFound, nil)
	case errors.Is(err, ErrEmptyPrompt):
		web.RespondUnprocessableEntity(w, err, message.InvalidInput, map[string]string{"prompt": "required"})
	case errors.Is(err, billing.ErrInsufficientCredits), errors.Is(err, functions.ErrInsufficientCredits):
		web.RespondPaymentRequired(w, err, message.NoCredits, nil)
	case errors.As(err, &statusErr):
		web.RespondBadGateway(w, err, message.UpstreamFailed)
	default:
		web.RespondInternalServerError(w, err)
	}
}
