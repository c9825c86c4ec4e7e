package character

import (
	"context"
	"errors"
)

type StubService struct {
	CreateFunc      func(ctx context.Context, params CreateParams) (Character, error)
	AddFunc         func(ctx context.Context, userID string, params CreateParams) (Character, error)
	ListFunc        func(ctx context.Context, userID, storyID string) ([]Character, error)
	ListByStoryFunc func(ctx context.Context, storyID string) ([]Character, error)
	UpdateFunc      func(ctx context.Context, userID, characterID string, params UpdateParams) (*Character, error)
	AddStateFunc    func(ctx context.Context, userID, characterID string, params StateParams) (*Character, error)
}

var _ Service = (*StubService)(nil)

func (s *StubService) Create(ctx context.Context, params CreateParams) (Character, error) {
	if s.CreateFunc == nil {
		return Character{}, errors.New("Create() not implemented by stub")
	}
	return s.CreateFunc(ctx, params)
}

func (s *StubService) Add(ctx context.Context, userID string, params CreateParams) (Character, error) {
	if s.AddFunc == nil {
		return Character{}, errors.New("Add() not implemented by stub")
	}
	return s.AddFunc(ctx, userID, params)
}

func (s *StubService) List(ctx context.Context, userID, storyID string) ([]Character, error) {
	if s.ListFunc == nil {
		return nil, errors.New("List() not implemented by stub")
	}
	return s.ListFunc(ctx, userID, storyID)
}

func (s *StubService) ListByStory(ctx context.Context, storyID string) ([]Character, error) {
	if s.ListByStoryFunc == nil {
		return nil, errors.New("ListByStory() not implemented by stub")
	}
	return s.ListByStoryFunc(ctx, storyID)
}

func (s *StubService) Update(ctx context.Context, userID, characterID string, params UpdateParams) (*Character, error) {
	if s.UpdateFunc == nil {
		return nil, errors.New("Update() not implemented by stub")
	}
	return s.UpdateFunc(ctx, userID, characterID, params)
}

func (s *StubService) AddState(ctx context.Context, userID, characterID string, params StateParams) (*Character, error) {
	if s.AddStateFunc == nil {
		return nil, errors.New("AddState() not implemented by stub")
	}
	return s.AddStateFunc(ctx, userID, characterID, params)
}

type StubRepo struct {
	CreateFunc      func(ctx context.Context, params CreateParams) (Character, error)
	FindFunc        func(ctx context.Context, characterID string) (*Character, error)
	ListByStoryFunc func(ctx context.Context, storyID string) ([]Character, error)
	StoryOwnerFunc  func(ctx context.Context, storyID string) (string, error)
	UpdateFunc      func(ctx context.Context, characterID string, params UpdateParams) error
	AddStateFunc    func(ctx context.Context, characterID string, params StateParams) (AppearanceState, error)
}

var _ Repository = (*StubRepo)(nil)

func (r *StubRepo) Create(ctx context.Context, params CreateParams) (Character, error) {
	if r.CreateFunc == nil {
		return Character{}, errors.New("Create() not implemented by stub")
	}
	return r.CreateFunc(ctx, params)
}

func (r *StubRepo) Find(ctx context.Context, characterID string) (*Character, error) {
	if r.FindFunc == nil {
		return nil, errors.New("Find() not implemented by stub")
	}
	return r.FindFunc(ctx, characterID)
}

func (r *StubRepo) ListByStory(ctx context.Context, storyID string) ([]Character, error) {
	if r.ListByStoryFunc == nil {
		return nil, errors.New("ListByStory() not implemented by stub")
	}
	return r.ListByStoryFunc(ctx, storyID)
}

func (r *StubRepo) StoryOwner(ctx context.Context, storyID string) (string, error) {
	if r.StoryOwnerFunc == nil {
		return "", errors.New("StoryOwner() not implemented by stub")
	}
	return r.StoryOwnerFunc(ctx, storyID)
}

func (r *StubRepo) Update(ctx context.Context, characterID string, params UpdateParams) error {
	if r.UpdateFunc == nil {
		return errors.New("Update() not implemented by stub")
	}
	return r.UpdateFunc(ctx, characterID, params)
}

func (r *StubRepo) AddState(ctx context.Context, characterID string, params StateParams) (AppearanceState, error) {
	if r.AddStateFunc == nil {
		return AppearanceState{}, errors.New("AddState() not implemented by stub")
	}
	return r.AddStateFunc(ctx, characterID, params)
}
