package scene

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/realtime"
)

var ErrPosition = errors.New("scene: position out of range")

// Position is where a scene lands after a reorder.
type Position struct {
	SceneID        string
	Number         int
	AnchorSentence *int
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (Scene, error)
	Find(ctx context.Context, sceneID string) (*Scene, error)
	ListByStory(ctx context.Context, storyID string) ([]Scene, error)
	StoryOwner(ctx context.Context, storyID string) (string, error)
	Update(ctx context.Context, sceneID string, params UpdateParams) error
	SetImage(ctx context.Context, sceneID, imageURL string) error
	SetPositions(ctx context.Context, storyID string, positions []Position) error
	SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error
}

// Invalidator drops cached per-story state after scenes change order.
// LockStory keeps concurrent anchor writes out while the order changes.
type Invalidator interface {
	LockStory(storyID string) (unlock func())
	Invalidate(storyID string)
}

type service struct {
	repo        Repository
	txMgr       db.TxManager
	publisher   realtime.Publisher
	invalidator Invalidator
}

var _ Service = (*service)(nil)

//nolint:ireturn // callers depend on the Service abstraction.
func NewService(repo Repository, txMgr db.TxManager, publisher realtime.Publisher, invalidator Invalidator) Service {
	return &service{
		repo:        repo,
		txMgr:       txMgr,
		publisher:   publisher,
		invalidator: invalidator,
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (Scene, error) {
	return s.repo.Create(ctx, params)
}

func (s *service) List(ctx context.Context, userID, storyID string) ([]Scene, error) {
	owner, err := s.repo.StoryOwner(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrNotFound
	}
	return s.repo.ListByStory(ctx, storyID)
}

func (s *service) ListByStory(ctx context.Context, storyID string) ([]Scene, error) {
	return s.repo.ListByStory(ctx, storyID)
}

func (s *service) Get(ctx context.Context, userID, sceneID string) (*Scene, error) {
	sc, err := s.repo.Find(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if sc.OwnerID != userID {
		return nil, ErrNotFound
	}
	return sc, nil
}

func (s *service) Update(ctx context.Context, userID, sceneID string, params UpdateParams) (*Scene, error) {
	sc, err := s.Get(ctx, userID, sceneID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, sceneID, params); err != nil {
		return nil, err
	}

	if params.Title != nil {
		sc.Title = *params.Title
	}
	if params.Summary != nil {
		sc.Summary = *params.Summary
	}
	if params.Prompt != nil {
		sc.Prompt = *params.Prompt
	}

	s.publish(realtime.EventScenesUpdated, sc.StoryID, sceneID)
	return sc, nil
}

// Reorder moves a scene to position (1-based) and renumbers the story's
// scenes 1..n. Anchors stay in ascending order: the sorted anchor
// sentences are handed out again in the new scene order.
func (s *service) Reorder(ctx context.Context, userID, sceneID string, position int) ([]Scene, error) {
	sc, err := s.Get(ctx, userID, sceneID)
	if err != nil {
		return nil, err
	}

	unlock := s.invalidator.LockStory(sc.StoryID)
	defer unlock()

	var scenes []Scene
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.ListByStory(txCtx, sc.StoryID)
		if err != nil {
			return err
		}

		reordered, err := Move(current, sceneID, position)
		if err != nil {
			return err
		}

		positions := make([]Position, 0, len(reordered))
		for _, r := range reordered {
			positions = append(positions, Position{SceneID: r.ID, Number: r.Number, AnchorSentence: r.AnchorSentence})
		}
		if err := s.repo.SetPositions(txCtx, sc.StoryID, positions); err != nil {
			return err
		}

		scenes = reordered
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder scene %s: %w", sceneID, err)
	}

	s.invalidator.Invalidate(sc.StoryID)
	s.publish(realtime.EventScenesUpdated, sc.StoryID, "")
	return scenes, nil
}

func (s *service) SetImage(ctx context.Context, sceneID, imageURL string) error {
	return s.repo.SetImage(ctx, sceneID, imageURL)
}

func (s *service) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	return s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetAnchors(txCtx, storyID, anchors)
	})
}

func (s *service) publish(typ, storyID, sceneID string) {
	s.publisher.Publish(realtime.Event{Type: typ, StoryID: storyID, SceneID: sceneID})
}

// Move returns scenes, ordered by number, with sceneID moved to position and
// every scene renumbered from 1. The input is not modified.
func Move(scenes []Scene, sceneID string, position int) ([]Scene, error) {
	if position < 1 || position > len(scenes) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrPosition, position, len(scenes))
	}

	ordered := slices.Clone(scenes)
	slices.SortStableFunc(ordered, func(a, b Scene) int { return a.Number - b.Number })

	from := slices.IndexFunc(ordered, func(s Scene) bool { return s.ID == sceneID })
	if from < 0 {
		return nil, ErrNotFound
	}

	anchors := make([]int, 0, len(ordered))
	for _, s := range ordered {
		if s.AnchorSentence != nil {
			anchors = append(anchors, *s.AnchorSentence)
		}
	}
	slices.Sort(anchors)

	moved := ordered[from]
	ordered = slices.Delete(ordered, from, from+1)
	ordered = slices.Insert(ordered, position-1, moved)

	next := 0
	for i := range ordered {
		ordered[i].Number = i + 1
		if ordered[i].AnchorSentence != nil {
			a := anchors[next]
			ordered[i].AnchorSentence = &a
			next++
		}
	}

	return ordered, nil
}
