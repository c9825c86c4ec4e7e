package placement

import (
	"context"
	"errors"
)

type StubService struct {
	OpenFunc func(ctx context.Context, userID, storyID string) (*View, error)
	MoveFunc func(ctx context.Context, userID, storyID, sceneID string, sentence int) (*View, error)
	UndoFunc func(ctx context.Context, userID, storyID string) (*View, error)
	RedoFunc func(ctx context.Context, userID, storyID string) (*View, error)
}

var _ Service = (*StubService)(nil)

func (s *StubService) Open(ctx context.Context, userID, storyID string) (*View, error) {
	if s.OpenFunc == nil {
		return nil, errors.New("Open() not implemented by stub")
	}
	return s.OpenFunc(ctx, userID, storyID)
}

func (s *StubService) Move(ctx context.Context, userID, storyID, sceneID string, sentence int) (*View, error) {
	if s.MoveFunc == nil {
		return nil, errors.New("Move() not implemented by stub")
	}
	return s.MoveFunc(ctx, userID, storyID, sceneID, sentence)
}

func (s *StubService) Undo(ctx context.Context, userID, storyID string) (*View, error) {
	if s.UndoFunc == nil {
		return nil, errors.New("Undo() not implemented by stub")
	}
	return s.UndoFunc(ctx, userID, storyID)
}

func (s *StubService) Redo(ctx context.Context, userID, storyID string) (*View, error) {
	if s.RedoFunc == nil {
		return nil, errors.New("Redo() not implemented by stub")
	}
	return s.RedoFunc(ctx, userID, storyID)
}

type StubStore struct {
	SourceFunc func(ctx context.Context, storyID string) (*Source, error)
}

var _ Store = (*StubStore)(nil)

func (s *StubStore) Source(ctx context.Context, storyID string) (*Source, error) {
	if s.SourceFunc == nil {
		return nil, errors.New("Source() not implemented by stub")
	}
	return s.SourceFunc(ctx, storyID)
}

type StubAnchorWriter struct {
	SetAnchorsFunc func(ctx context.Context, storyID string, anchors map[string]int) error
}

var _ AnchorWriter = (*StubAnchorWriter)(nil)

func (s *StubAnchorWriter) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	if s.SetAnchorsFunc == nil {
		return errors.New("SetAnchors() not implemented by stub")
	}
	return s.SetAnchorsFunc(ctx, storyID, anchors)
}
