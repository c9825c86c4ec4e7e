package story

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/export"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
	"github.com/ferdiebergado/storyboard/internal/scene"
)

const (
	MsgImported  = "Story imported."
	MsgDeleted   = "Story deleted."
	MsgEmptyBody = "The story has no text to segment."
	mimePDF      = "application/pdf"
)

type StoryService interface {
	Import(ctx context.Context, params ImportParams) (*Storyboard, error)
	Get(ctx context.Context, userID, storyID string) (*Story, error)
	List(ctx context.Context, userID string) ([]Story, error)
	Delete(ctx context.Context, userID, storyID string) error
	Storyboard(ctx context.Context, userID, storyID string) (*Storyboard, error)
}

var _ StoryService = (*Service)(nil)

type Handler struct {
	svc StoryService
}

func NewHandler(svc StoryService) *Handler {
	return &Handler{svc: svc}
}

type StoryData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStoryData(s Story) StoryData {
	return StoryData{
		ID:        s.ID,
		Title:     s.Title,
		Body:      s.Body,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type StoryboardResponse struct {
	Story      StoryData                 `json:"story"`
	Scenes     []scene.SceneData         `json:"scenes"`
	Characters []character.CharacterData `json:"characters"`
}

func toStoryboardResponse(b *Storyboard) *StoryboardResponse {
	res := &StoryboardResponse{
		Story:      toStoryData(b.Story),
		Scenes:     make([]scene.SceneData, 0, len(b.Scenes)),
		Characters: make([]character.CharacterData, 0, len(b.Characters)),
	}
	for _, s := range b.Scenes {
		res.Scenes = append(res.Scenes, scene.ToData(s))
	}
	for _, c := range b.Characters {
		res.Characters = append(res.Characters, character.ToData(c))
	}
	return res
}

type ImportRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Body  string `json:"body" validate:"required"`
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	req, err := web.ParamsFromContext[ImportRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	board, err := h.svc.Import(r.Context(), ImportParams{UserID: userID, Title: req.Title, Body: req.Body})
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgImported
	web.RespondCreated(w, &msg, toStoryboardResponse(board))
}

type ListResponse struct {
	Stories []StoryData `json:"stories"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	stories, err := h.svc.List(r.Context(), userID)
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}

	data := make([]StoryData, 0, len(stories))
	for _, s := range stories {
		data = append(data, toStoryData(s))
	}
	web.RespondOK(w, nil, &ListResponse{Stories: data})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	board, err := h.svc.Storyboard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	web.RespondOK(w, nil, toStoryboardResponse(board))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}

	msg := MsgDeleted
	web.RespondOK(w, &msg, &struct{}{})
}

// ExportPDF renders the whole document before writing so a failure can
// still be reported as JSON.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	board, err := h.svc.Storyboard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.PDF(&buf, ToBoard(board)); err != nil {
		if errors.Is(err, export.ErrEmptyBoard) {
			web.RespondUnprocessableEntity(w, err, "The storyboard has no scenes.", nil)
			return
		}
		web.RespondInternalServerError(w, err)
		return
	}

	w.Header().Set(web.HeaderContentType, mimePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "storyboard-"+board.Story.ID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ToBoard flattens a storyboard into its printable form. Each scene lists
// its characters with their appearance at that scene.
func ToBoard(b *Storyboard) export.Board {
	byName := make(map[string]*character.Character, len(b.Characters))
	for i := range b.Characters {
		byName[b.Characters[i].Name] = &b.Characters[i]
	}

	board := export.Board{Title: b.Story.Title, Scenes: make([]export.Scene, 0, len(b.Scenes))}
	for _, s := range b.Scenes {
		names := make([]string, 0, len(s.Characters))
		for _, name := range s.Characters {
			if c, ok := byName[name]; ok {
				if look := c.AppearanceAt(s.Number); look != "" {
					name += " (" + look + ")"
				}
			}
			names = append(names, name)
		}

		board.Scenes = append(board.Scenes, export.Scene{
			Number:     s.Number,
			Title:      s.Title,
			Summary:    s.Summary,
			Prompt:     s.Prompt,
			ImageURL:   s.ImageURL,
			Characters: names,
		})
	}
	return board
}

func respondError(w http.ResponseWriter, err error) {
	var statusErr *functions.StatusError
	switch {
	case errors.Is(err, ErrNotFound):
		web.RespondNotFound(w, err, message.NotFound, nil)
	case errors.Is(err, ErrEmptyBody), errors.Is(err, ErrNoScenes):
		web.RespondUnprocessableEntity(w, err, MsgEmptyBody, map[string]string{"body": "no sentences found"})
	case errors.Is(err, functions.ErrInsufficientCredits):
		web.RespondPaymentRequired(w, err, message.NoCredits, nil)
	case errors.As(err, &statusErr):
		web.RespondBadGateway(w, err, message.UpstreamFailed)
	default:
		web.RespondInternalServerError(w, err)
	}
}
