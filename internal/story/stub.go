package story

import (
	"context"
	"errors"

	"github.com/ferdiebergado/storyboard/internal/placement"
)

type StubRepo struct {
	CreateFunc func(ctx context.Context, params CreateParams) (Story, error)
	FindFunc   func(ctx context.Context, storyID string) (*Story, error)
	ListFunc   func(ctx context.Context, userID string) ([]Story, error)
	DeleteFunc func(ctx context.Context, storyID string) error
}

var _ Repository = (*StubRepo)(nil)

func (r *StubRepo) Create(ctx context.Context, params CreateParams) (Story, error) {
	if r.CreateFunc == nil {
		return Story{}, errors.New("Create() not implemented by stub")
	}
	return r.CreateFunc(ctx, params)
}

func (r *StubRepo) Find(ctx context.Context, storyID string) (*Story, error) {
	if r.FindFunc == nil {
		return nil, errors.New("Find() not implemented by stub")
	}
	return r.FindFunc(ctx, storyID)
}

func (r *StubRepo) List(ctx context.Context, userID string) ([]Story, error) {
	if r.ListFunc == nil {
		return nil, errors.New("List() not implemented by stub")
	}
	return r.ListFunc(ctx, userID)
}

func (r *StubRepo) Delete(ctx context.Context, storyID string) error {
	if r.DeleteFunc == nil {
		return errors.New("Delete() not implemented by stub")
	}
	return r.DeleteFunc(ctx, storyID)
}

type StubService struct {
	ImportFunc     func(ctx context.Context, params ImportParams) (*Storyboard, error)
	GetFunc        func(ctx context.Context, userID, storyID string) (*Story, error)
	ListFunc       func(ctx context.Context, userID string) ([]Story, error)
	DeleteFunc     func(ctx context.Context, userID, storyID string) error
	StoryboardFunc func(ctx context.Context, userID, storyID string) (*Storyboard, error)
}

var _ StoryService = (*StubService)(nil)

func (s *StubService) Import(ctx context.Context, params ImportParams) (*Storyboard, error) {
	if s.ImportFunc == nil {
		return nil, errors.New("Import() not implemented by stub")
	}
	return s.ImportFunc(ctx, params)
}

func (s *StubService) Get(ctx context.Context, userID, storyID string) (*Story, error) {
	if s.GetFunc == nil {
		return nil, errors.New("Get() not implemented by stub")
	}
	return s.GetFunc(ctx, userID, storyID)
}

func (s *StubService) List(ctx context.Context, userID string) ([]Story, error) {
	if s.ListFunc == nil {
		return nil, errors.New("List() not implemented by stub")
	}
	return s.ListFunc(ctx, userID)
}

func (s *StubService) Delete(ctx context.Context, userID, storyID string) error {
	if s.DeleteFunc == nil {
		return errors.New("Delete() not implemented by stub")
	}
	return s.DeleteFunc(ctx, userID, storyID)
}

func (s *StubService) Storyboard(ctx context.Context, userID, storyID string) (*Storyboard, error) {
	if s.StoryboardFunc == nil {
		return nil, errors.New("Storyboard() not implemented by stub")
	}
	return s.StoryboardFunc(ctx, userID, storyID)
}

type StubSegmenter struct {
	SegmentFunc func(ctx context.Context, title string, doc *placement.Document) (*Segmentation, error)
}

var _ Segmenter = (*StubSegmenter)(nil)

func (s *StubSegmenter) Segment(ctx context.Context, title string, doc *placement.Document) (*Segmentation, error) {
	if s.SegmentFunc == nil {
		return nil, errors.New("Segment() not implemented by stub")
	}
	return s.SegmentFunc(ctx, title, doc)
}

type StubInvalidator struct {
	Invalidated []string
}

func (s *StubInvalidator) Invalidate(storyID string) {
	s.Invalidated = append(s.Invalidated, storyID)
}
