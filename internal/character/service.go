package character

import (
	"context"

	"github.com/ferdiebergado/storyboard/internal/realtime"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (Character, error)
	Find(ctx context.Context, characterID string) (*Character, error)
	ListByStory(ctx context.Context, storyID string) ([]Character, error)
	StoryOwner(ctx context.Context, storyID string) (string, error)
	Update(ctx context.Context, characterID string, params UpdateParams) error
	AddState(ctx context.Context, characterID string, params StateParams) (AppearanceState, error)
}

type service struct {
	repo      Repository
	publisher realtime.Publisher
}

var _ Service = (*service)(nil)

//nolint:ireturn // callers depend on the Service abstraction.
func NewService(repo Repository, publisher realtime.Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) Create(ctx context.Context, params CreateParams) (Character, error) {
	return s.repo.Create(ctx, params)
}

func (s *service) Add(ctx context.Context, userID string, params CreateParams) (Character, error) {
	if err := s.checkOwner(ctx, userID, params.StoryID); err != nil {
		return Character{}, err
	}

	c, err := s.repo.Create(ctx, params)
	if err != nil {
		return c, err
	}

	s.notify(params.StoryID)
	return c, nil
}

func (s *service) List(ctx context.Context, userID, storyID string) ([]Character, error) {
	if err := s.checkOwner(ctx, userID, storyID); err != nil {
		return nil, err
	}
	return s.repo.ListByStory(ctx, storyID)
}

func (s *service) ListByStory(ctx context.Context, storyID string) ([]Character, error) {
	return s.repo.ListByStory(ctx, storyID)
}

func (s *service) Update(ctx context.Context, userID, characterID string, params UpdateParams) (*Character, error) {
	c, err := s.get(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, characterID, params); err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Description != nil {
		c.Description = *params.Description
	}

	s.notify(c.StoryID)
	return c, nil
}

func (s *service) AddState(ctx context.Context, userID, characterID string, params StateParams) (*Character, error) {
	c, err := s.get(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	state, err := s.repo.AddState(ctx, characterID, params)
	if err != nil {
		return nil, err
	}
	c.States = append(c.States, state)

	s.notify(c.StoryID)
	return c, nil
}

func (s *service) get(ctx context.Context, userID, characterID string) (*Character, error) {
	c, err := s.repo.Find(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *service) checkOwner(ctx context.Context, userID, storyID string) error {
	owner, err := s.repo.StoryOwner(ctx, storyID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotFound
	}
	return nil
}

// Character changes alter every scene prompt the character appears in.
func (s *service) notify(storyID string) {
	s.publisher.Publish(realtime.Event{Type: realtime.EventScenesUpdated, StoryID: storyID})
}
