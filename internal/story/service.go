package story

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/realtime"
	"github.com/ferdiebergado/storyboard/internal/scene"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyBody = errors.New("story: body has no sentences")
	ErrNoScenes  = errors.New("story: segmentation produced no scenes")
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (Story, error)
	Find(ctx context.Context, storyID string) (*Story, error)
	List(ctx context.Context, userID string) ([]Story, error)
	Delete(ctx context.Context, storyID string) error
}

type SceneStore interface {
	Create(ctx context.Context, params scene.CreateParams) (scene.Scene, error)
	ListByStory(ctx context.Context, storyID string) ([]scene.Scene, error)
}

type CharacterStore interface {
	Create(ctx context.Context, params character.CreateParams) (character.Character, error)
	ListByStory(ctx context.Context, storyID string) ([]character.Character, error)
}

// Invalidator drops cached per-story state.
type Invalidator interface {
	Invalidate(storyID string)
}

type ImportParams struct {
	UserID string
	Title  string
	Body   string
}

type Service struct {
	repo        Repository
	scenes      SceneStore
	characters  CharacterStore
	txMgr       db.TxManager
	segmenter   Segmenter
	publisher   realtime.Publisher
	invalidator Invalidator
}

type Deps struct {
	Scenes      SceneStore
	Characters  CharacterStore
	TxMgr       db.TxManager
	Segmenter   Segmenter
	Publisher   realtime.Publisher
	Invalidator Invalidator
}

func NewService(repo Repository, deps *Deps) *Service {
	return &Service{
		repo:        repo,
		scenes:      deps.Scenes,
		characters:  deps.Characters,
		txMgr:       deps.TxMgr,
		segmenter:   deps.Segmenter,
		publisher:   deps.Publisher,
		invalidator: deps.Invalidator,
	}
}

// Import normalizes the body to NFC, segments it into scenes and stores the
// story, its scenes and its cast in one transaction. Each scene is
// anchored at the sentence nearest its start.
func (s *Service) Import(ctx context.Context, params ImportParams) (*Storyboard, error) {
	body := norm.NFC.String(params.Body)
	title := strings.TrimSpace(norm.NFC.String(params.Title))

	doc := placement.Tokenize(body)
	if doc.Len() == 0 {
		return nil, ErrEmptyBody
	}

	seg, err := s.segmenter.Segment(ctx, title, doc)
	if err != nil {
		return nil, fmt.Errorf("segment story: %w", err)
	}
	if len(seg.Scenes) == 0 {
		return nil, ErrNoScenes
	}

	status := StatusSegmented
	if seg.Method != MethodRemote {
		status = StatusDraft
	}

	board := &Storyboard{}
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		st, err := s.repo.Create(txCtx, CreateParams{UserID: params.UserID, Title: title, Body: body, Status: status})
		if err != nil {
			return err
		}
		board.Story = st

		for i, sg := range seg.Scenes {
			anchor := max(doc.SentenceAt(sg.Start), 0)
			sc, err := s.scenes.Create(txCtx, scene.CreateParams{
				StoryID:        st.ID,
				Number:         i + 1,
				Title:          sg.Title,
				Summary:        sg.Summary,
				Start:          sg.Start,
				End:            sg.End,
				Prompt:         sg.Prompt,
				Characters:     cleanNames(sg.Characters),
				AnchorSentence: &anchor,
			})
			if err != nil {
				return err
			}
			board.Scenes = append(board.Scenes, sc)
		}

		for _, member := range cast(seg) {
			c, err := s.characters.Create(txCtx, character.CreateParams{
				StoryID:     st.ID,
				Name:        member.Name,
				Description: member.Description,
			})
			if err != nil {
				return err
			}
			board.Characters = append(board.Characters, c)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import story: %w", err)
	}

	slog.Info("story imported",
		"story_id", board.Story.ID,
		"method", seg.Method,
		"sentences", doc.Len(),
		"scenes", len(board.Scenes),
		"characters", len(board.Characters),
	)
	return board, nil
}

// cast merges the described cast with names that only appear in scenes,
// keeping first-seen order.
func cast(seg *Segmentation) []CastMember {
	seen := make(map[string]bool)
	var members []CastMember
	add := func(m CastMember) {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" || seen[m.Name] {
			return
		}
		seen[m.Name] = true
		members = append(members, m)
	}

	for _, m := range seg.Characters {
		add(m)
	}
	for _, sc := range seg.Scenes {
		for _, name := range sc.Characters {
			add(CastMember{Name: name})
		}
	}
	return members
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (s *Service) Get(ctx context.Context, userID, storyID string) (*Story, error) {
	st, err := s.repo.Find(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrNotFound
	}
	return st, nil
}

// Authorize reports ErrNotFound unless userID owns the story.
func (s *Service) Authorize(ctx context.Context, userID, storyID string) error {
	_, err := s.Get(ctx, userID, storyID)
	return err
}

func (s *Service) List(ctx context.Context, userID string) ([]Story, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, storyID string) error {
	if _, err := s.Get(ctx, userID, storyID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, storyID); err != nil {
		return err
	}

	s.invalidator.Invalidate(storyID)
	s.publisher.Publish(realtime.Event{Type: realtime.EventStoryDeleted, StoryID: storyID})
	return nil
}

func (s *Service) Storyboard(ctx context.Context, userID, storyID string) (*Storyboard, error) {
	st, err := s.Get(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	scenes, err := s.scenes.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	characters, err := s.characters.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	return &Storyboard{Story: *st, Scenes: scenes, Characters: characters}, nil
}
