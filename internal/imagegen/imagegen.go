// Package imagegen regenerates scene artwork through the function gateway.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
	"github.com/ferdiebergado/storyboard/internal/realtime"
	"github.com/ferdiebergado/storyboard/internal/scene"
	"github.com/google/uuid"
)

const (
	FuncGenerateImage = "generate-image"

	ReasonImage  = "image"
	ReasonRefund = "refund"

	HeaderIdempotencyKey = "Idempotency-Key"
)

var ErrEmptyPrompt = errors.New("imagegen: scene has no prompt")

type SceneStore interface {
	Get(ctx context.Context, userID, sceneID string) (*scene.Scene, error)
	SetImage(ctx context.Context, sceneID, imageURL string) error
}

type CharacterLister interface {
	ListByStory(ctx context.Context, storyID string) ([]character.Character, error)
}

// Ledger moves credits. Debit must fail without going negative.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
	Credit(ctx context.Context, userID string, amount int, reason, ref string) (int, error)
}

type Result struct {
	Scene   *scene.Scene
	Balance int
}

type Service struct {
	scenes     SceneStore
	characters CharacterLister
	ledger     Ledger
	invoker    functions.Invoker
	publisher  realtime.Publisher
	cfg        *config.ImageGen
}

func NewService(scenes SceneStore, characters CharacterLister, ledger Ledger, invoker functions.Invoker, publisher realtime.Publisher, cfg *config.ImageGen) *Service {
	return &Service{
		scenes:     scenes,
		characters: characters,
		ledger:     ledger,
		invoker:    invoker,
		publisher:  publisher,
		cfg:        cfg,
	}
}

type generateRequest struct {
	SceneID string `json:"scene_id"`
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type generateResponse struct {
	ImageURL string `json:"image_url"`
}

// Regenerate draws a new image for the scene. The credit cost is debited
// up front and refunded if generation fails. A non-empty prompt replaces
// the scene's stored prompt for this request only.
func (s *Service) Regenerate(ctx context.Context, userID, sceneID, prompt string) (*Result, error) {
	sc, err := s.scenes.Get(ctx, userID, sceneID)
	if err != nil {
		return nil, err
	}

	cast, err := s.characters.ListByStory(ctx, sc.StoryID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	base := strings.TrimSpace(prompt)
	if base == "" {
		base = strings.TrimSpace(sc.Prompt)
	}
	if base == "" {
		return nil, ErrEmptyPrompt
	}

	ref := uuid.NewString()
	balance, err := s.ledger.Debit(ctx, userID, s.cfg.CreditCost, ReasonImage, ref)
	if err != nil {
		return nil, fmt.Errorf("debit image credits: %w", err)
	}

	req := generateRequest{
		SceneID: sc.ID,
		Prompt:  ComposePrompt(base, sc, cast),
		Model:   s.cfg.Model,
		Width:   s.cfg.Width,
		Height:  s.cfg.Height,
	}
	var res generateResponse
	err = s.invoker.Invoke(ctx, FuncGenerateImage, req, &res, functions.WithHeader(HeaderIdempotencyKey, ref))
	if err == nil && res.ImageURL == "" {
		err = &functions.StatusError{Function: FuncGenerateImage, Status: http.StatusBadGateway, Message: "no image url returned"}
	}
	if err == nil {
		err = s.scenes.SetImage(ctx, sc.ID, res.ImageURL)
	}
	if err != nil {
		return nil, s.refund(ctx, userID, ref, err)
	}

	sc.ImageURL = res.ImageURL
	s.publisher.Publish(realtime.Event{Type: realtime.EventImageUpdated, StoryID: sc.StoryID, SceneID: sc.ID})
	slog.Info("scene image regenerated", "scene_id", sc.ID, "ref", ref)
	return &Result{Scene: sc, Balance: balance}, nil
}

func (s *Service) refund(ctx context.Context, userID, ref string, cause error) error {
	if _, err := s.ledger.Credit(context.WithoutCancel(ctx), userID, s.cfg.CreditCost, ReasonRefund, ref); err != nil {
		slog.Error("refund image credits", "user_id", userID, "ref", ref, "error", err)
		return errors.Join(fmt.Errorf("generate image: %w", cause), fmt.Errorf("refund: %w", err))
	}
	return fmt.Errorf("generate image: %w", cause)
}

// ComposePrompt appends how each character in the scene looks at that
// point in the story.
func ComposePrompt(base string, sc *scene.Scene, cast []character.Character) string {
	var b strings.Builder
	b.WriteString(base)

	first := true
	for _, c := range cast {
		if !sc.HasCharacter(c.Name) {
			continue
		}
		if first {
			b.WriteString("\n\nCharacters:")
			first = false
		}
		b.WriteString("\n- ")
		b.WriteString(c.Name)
		if look := c.AppearanceAt(sc.Number); look != "" {
			b.WriteString(": ")
			b.WriteString(look)
		}
	}
	return b.String()
}
