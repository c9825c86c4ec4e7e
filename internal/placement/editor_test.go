package placement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/ferdiebergado/storyboard/internal/realtime"
)

type memWriter struct {
	mu    sync.Mutex
	saved []map[string]int
	err   error
}

func (w *memWriter) SetAnchors(_ context.Context, _ string, anchors map[string]int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.saved = append(w.saved, anchors)
	return nil
}

func (w *memWriter) last() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.saved) == 0 {
		return nil
	}
	return w.saved[len(w.saved)-1]
}

func newStore(loads *int) *placement.StubStore {
	return &placement.StubStore{
		SourceFunc: func(_ context.Context, storyID string) (*placement.Source, error) {
			if storyID != "story-1" {
				return nil, placement.ErrNotFound
			}
			if loads != nil {
				*loads++
			}
			return &placement.Source{
				StoryID: storyID,
				UserID:  "user-1",
				Body:    sixSentences,
				Scenes: []placement.SceneRef{
					{ID: "a", Number: 1, Start: 0},
					{ID: "b", Number: 2, Start: 10},
					{ID: "c", Number: 3, Start: 20},
				},
				Stored: map[string]int{"b": 2, "c": 99},
			}, nil
		},
	}
}

func TestEditor_Open(t *testing.T) {
	t.Parallel()

	e := placement.NewEditor(newStore(nil), &memWriter{}, realtime.NopPublisher{}, 10)

	view, err := e.Open(context.Background(), "user-1", "story-1")
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}

	if got := len(view.Sentences); got != 6 {
		t.Errorf("len(view.Sentences) = %d, want: 6", got)
	}
	if view.Sentences[1].Text != "S1." {
		t.Errorf("view.Sentences[1].Text = %q, want: %q", view.Sentences[1].Text, "S1.")
	}
	if got, _ := view.Anchors.Sentence("c"); got != 4 {
		t.Errorf("out of range stored anchor: Sentence(c) = %d, want: 4", got)
	}
	if view.CanUndo || view.CanRedo {
		t.Errorf("CanUndo, CanRedo = %v, %v, want: false, false", view.CanUndo, view.CanRedo)
	}
}

func TestEditor_OpenOwnership(t *testing.T) {
	t.Parallel()

	e := placement.NewEditor(newStore(nil), &memWriter{}, realtime.NopPublisher{}, 10)

	if _, err := e.Open(context.Background(), "user-2", "story-1"); !errors.Is(err, placement.ErrNotFound) {
		t.Errorf("Open() as another user = %v, want: %v", err, placement.ErrNotFound)
	}

	if _, err := e.Open(context.Background(), "user-1", "story-9"); !errors.Is(err, placement.ErrNotFound) {
		t.Errorf("Open() missing story = %v, want: %v", err, placement.ErrNotFound)
	}
}

func TestEditor_MoveUndoRedo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := &memWriter{}
	pub := &realtime.RecordingPublisher{}
	e := placement.NewEditor(newStore(nil), w, pub, 10)

	view, err := e.Move(ctx, "user-1", "story-1", "b", 3)
	if err != nil {
		t.Fatalf("Move() = %v", err)
	}
	if !view.CanUndo {
		t.Error("CanUndo = false after a move")
	}
	if got := w.last()["b"]; got != 3 {
		t.Errorf("saved anchor b = %d, want: 3", got)
	}

	if _, err := e.Move(ctx, "user-1", "story-1", "b", 5); !errors.Is(err, placement.ErrContinuity) {
		t.Fatalf("Move() past scene c = %v, want: %v", err, placement.ErrContinuity)
	}

	view, err = e.Undo(ctx, "user-1", "story-1")
	if err != nil {
		t.Fatalf("Undo() = %v", err)
	}
	if got, _ := view.Anchors.Sentence("b"); got != 2 {
		t.Errorf("after undo Sentence(b) = %d, want: 2", got)
	}
	if got := w.last()["b"]; got != 2 {
		t.Errorf("saved anchor b after undo = %d, want: 2", got)
	}

	if _, err := e.Undo(ctx, "user-1", "story-1"); !errors.Is(err, placement.ErrNothingToUndo) {
		t.Errorf("Undo() at oldest = %v, want: %v", err, placement.ErrNothingToUndo)
	}

	view, err = e.Redo(ctx, "user-1", "story-1")
	if err != nil {
		t.Fatalf("Redo() = %v", err)
	}
	if got, _ := view.Anchors.Sentence("b"); got != 3 {
		t.Errorf("after redo Sentence(b) = %d, want: 3", got)
	}

	if got := len(pub.Published()); got != 3 {
		t.Errorf("published events = %d, want: 3", got)
	}
	for _, evt := range pub.Published() {
		if evt.Type != realtime.EventAnchorsUpdated || evt.StoryID != "story-1" {
			t.Errorf("event = %+v, want anchors.updated for story-1", evt)
		}
	}
}

func TestEditor_SaveFailureKeepsHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := &memWriter{}
	e := placement.NewEditor(newStore(nil), w, realtime.NopPublisher{}, 10)

	if _, err := e.Move(ctx, "user-1", "story-1", "b", 3); err != nil {
		t.Fatalf("Move() = %v", err)
	}

	w.mu.Lock()
	w.err = errors.New("db down")
	w.mu.Unlock()

	if _, err := e.Move(ctx, "user-1", "story-1", "b", 1); err == nil {
		t.Fatal("Move() with failing writer = nil, want error")
	}
	if _, err := e.Undo(ctx, "user-1", "story-1"); err == nil {
		t.Fatal("Undo() with failing writer = nil, want error")
	}

	view, err := e.Open(ctx, "user-1", "story-1")
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if got, _ := view.Anchors.Sentence("b"); got != 3 {
		t.Errorf("Sentence(b) = %d, want: 3", got)
	}
	if !view.CanUndo || view.CanRedo {
		t.Errorf("CanUndo, CanRedo = %v, %v, want: true, false", view.CanUndo, view.CanRedo)
	}
}

func TestEditor_Invalidate(t *testing.T) {
	t.Parallel()

	loads := 0
	e := placement.NewEditor(newStore(&loads), &memWriter{}, realtime.NopPublisher{}, 10)
	ctx := context.Background()

	for range 2 {
		if _, err := e.Open(ctx, "user-1", "story-1"); err != nil {
			t.Fatalf("Open() = %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want: 1", loads)
	}

	e.Invalidate("story-1")

	if _, err := e.Open(ctx, "user-1", "story-1"); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if loads != 2 {
		t.Errorf("loads after invalidate = %d, want: 2", loads)
	}
}

type gatedWriter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *gatedWriter) SetAnchors(context.Context, string, map[string]int) error {
	w.once.Do(func() {
		close(w.entered)
		<-w.release
	})
	return nil
}

func TestEditor_LockStoryWaitsForMove(t *testing.T) {
	t.Parallel()

	loads := 0
	w := &gatedWriter{entered: make(chan struct{}), release: make(chan struct{})}
	e := placement.NewEditor(newStore(&loads), w, realtime.NopPublisher{}, 10)
	ctx := context.Background()

	if _, err := e.Open(ctx, "user-1", "story-1"); err != nil {
		t.Fatalf("Open() = %v", err)
	}

	moved := make(chan error, 1)
	go func() {
		_, err := e.Move(ctx, "user-1", "story-1", "b", 3)
		moved <- err
	}()
	<-w.entered

	// a reorder renumbers the scenes and drops the session under the lock
	reordered := make(chan struct{})
	go func() {
		unlock := e.LockStory("story-1")
		e.Invalidate("story-1")
		unlock()
		close(reordered)
	}()

	select {
	case <-reordered:
		t.Fatal("story lock acquired while a move was saving")
	case <-time.After(20 * time.Millisecond):
	}

	close(w.release)
	if err := <-moved; err != nil {
		t.Fatalf("Move() = %v", err)
	}
	<-reordered

	view, err := e.Move(ctx, "user-1", "story-1", "b", 1)
	if err != nil {
		t.Fatalf("Move() after reorder = %v", err)
	}
	if loads != 2 {
		t.Errorf("loads = %d, want: 2", loads)
	}
	if got, _ := view.Anchors.Sentence("b"); got != 1 {
		t.Errorf("Sentence(b) = %d, want: 1", got)
	}
}
