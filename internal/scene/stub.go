package scene

import (
	"context"
	"errors"
)

type StubService struct {
	CreateFunc      func(ctx context.Context, params CreateParams) (Scene, error)
	ListFunc        func(ctx context.Context, userID, storyID string) ([]Scene, error)
	ListByStoryFunc func(ctx context.Context, storyID string) ([]Scene, error)
	GetFunc         func(ctx context.Context, userID, sceneID string) (*Scene, error)
	UpdateFunc      func(ctx context.Context, userID, sceneID string, params UpdateParams) (*Scene, error)
	ReorderFunc     func(ctx context.Context, userID, sceneID string, position int) ([]Scene, error)
	SetImageFunc    func(ctx context.Context, sceneID, imageURL string) error
	SetAnchorsFunc  func(ctx context.Context, storyID string, anchors map[string]int) error
}

var _ Service = (*StubService)(nil)

func (s *StubService) Create(ctx context.Context, params CreateParams) (Scene, error) {
	if s.CreateFunc == nil {
		return Scene{}, errors.New("Create() not implemented by stub")
	}
	return s.CreateFunc(ctx, params)
}

func (s *StubService) List(ctx context.Context, userID, storyID string) ([]Scene, error) {
	if s.ListFunc == nil {
		return nil, errors.New("List() not implemented by stub")
	}
	return s.ListFunc(ctx, userID, storyID)
}

func (s *StubService) ListByStory(ctx context.Context, storyID string) ([]Scene, error) {
	if s.ListByStoryFunc == nil {
		return nil, errors.New("ListByStory() not implemented by stub")
	}
	return s.ListByStoryFunc(ctx, storyID)
}

func (s *StubService) Get(ctx context.Context, userID, sceneID string) (*Scene, error) {
	if s.GetFunc == nil {
		return nil, errors.New("Get() not implemented by stub")
	}
	return s.GetFunc(ctx, userID, sceneID)
}

func (s *StubService) Update(ctx context.Context, userID, sceneID string, params UpdateParams) (*Scene, error) {
	if s.UpdateFunc == nil {
		return nil, errors.New("Update() not implemented by stub")
	}
	return s.UpdateFunc(ctx, userID, sceneID, params)
}

func (s *StubService) Reorder(ctx context.Context, userID, sceneID string, position int) ([]Scene, error) {
	if s.ReorderFunc == nil {
		return nil, errors.New("Reorder() not implemented by stub")
	}
	return s.ReorderFunc(ctx, userID, sceneID, position)
}

func (s *StubService) SetImage(ctx context.Context, sceneID, imageURL string) error {
	if s.SetImageFunc == nil {
		return errors.New("SetImage() not implemented by stub")
	}
	return s.SetImageFunc(ctx, sceneID, imageURL)
}

func (s *StubService) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	if s.SetAnchorsFunc == nil {
		return errors.New("SetAnchors() not implemented by stub")
	}
	return s.SetAnchorsFunc(ctx, storyID, anchors)
}

type StubRepo struct {
	CreateFunc       func(ctx context.Context, params CreateParams) (Scene, error)
	FindFunc         func(ctx context.Context, sceneID string) (*Scene, error)
	ListByStoryFunc  func(ctx context.Context, storyID string) ([]Scene, error)
	StoryOwnerFunc   func(ctx context.Context, storyID string) (string, error)
	UpdateFunc       func(ctx context.Context, sceneID string, params UpdateParams) error
	SetImageFunc     func(ctx context.Context, sceneID, imageURL string) error
	SetPositionsFunc func(ctx context.Context, storyID string, positions []Position) error
	SetAnchorsFunc   func(ctx context.Context, storyID string, anchors map[string]int) error
}

var _ Repository = (*StubRepo)(nil)

func (r *StubRepo) Create(ctx context.Context, params CreateParams) (Scene, error) {
	if r.CreateFunc == nil {
		return Scene{}, errors.New("Create() not implemented by stub")
	}
	return r.CreateFunc(ctx, params)
}

func (r *StubRepo) Find(ctx context.Context, sceneID string) (*Scene, error) {
	if r.FindFunc == nil {
		return nil, errors.New("Find() not implemented by stub")
	}
	return r.FindFunc(ctx, sceneID)
}

func (r *StubRepo) ListByStory(ctx context.Context, storyID string) ([]Scene, error) {
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

func (r *StubRepo) Update(ctx context.Context, sceneID string, params UpdateParams) error {
	if r.UpdateFunc == nil {
		return errors.New("Update() not implemented by stub")
	}
	return r.UpdateFunc(ctx, sceneID, params)
}

func (r *StubRepo) SetImage(ctx context.Context, sceneID, imageURL string) error {
	if r.SetImageFunc == nil {
		return errors.New("SetImage() not implemented by stub")
	}
	return r.SetImageFunc(ctx, sceneID, imageURL)
}

func (r *StubRepo) SetPositions(ctx context.Context, storyID string, positions []Position) error {
	if r.SetPositionsFunc == nil {
		return errors.New("SetPositions() not implemented by stub")
	}
	return r.SetPositionsFunc(ctx, storyID, positions)
}

func (r *StubRepo) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	if r.SetAnchorsFunc == nil {
		return errors.New("SetAnchors() not implemented by stub")
	}
	return r.SetAnchorsFunc(ctx, storyID, anchors)
}

type StubInvalidator struct {
	LockStoryFunc  func(storyID string) func()
	InvalidateFunc func(storyID string)
}

func (s *StubInvalidator) LockStory(storyID string) func() {
	if s.LockStoryFunc != nil {
		return s.LockStoryFunc(storyID)
	}
	return func() {}
}

func (s *StubInvalidator) Invalidate(storyID string) {
	if s.InvalidateFunc != nil {
		s.InvalidateFunc(storyID)
	}
}
