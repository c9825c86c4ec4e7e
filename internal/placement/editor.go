package placement

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/ferdiebergado/storyboard/internal/realtime"
)

var (
	ErrNothingToUndo = errors.New("placement: nothing to undo")
	ErrNothingToRedo = errors.New("placement: nothing to redo")
)

const (
	defaultMaxSessions = 1024
	storyLockStripes   = 64
)

type Store interface {
	Source(ctx context.Context, storyID string) (*Source, error)
}

// AnchorWriter persists a story's anchors keyed by scene id.
type AnchorWriter interface {
	SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error
}

// AnchorWriterFunc adapts a function to AnchorWriter.
type AnchorWriterFunc func(ctx context.Context, storyID string, anchors map[string]int) error

func (f AnchorWriterFunc) SetAnchors(ctx context.Context, storyID string, anchors map[string]int) error {
	return f(ctx, storyID, anchors)
}

type SentenceView struct {
	Sentence
	Text string `json:"text"`
}

type View struct {
	StoryID    string         `json:"story_id"`
	Paragraphs []Paragraph    `json:"paragraphs"`
	Sentences  []SentenceView `json:"sentences"`
	Anchors    AnchorMap      `json:"anchors"`
	CanUndo    bool           `json:"can_undo"`
	CanRedo    bool           `json:"can_redo"`
}

type session struct {
	mu      sync.Mutex
	userID  string
	doc     *Document
	history *History
}

// Editor keeps one placement session per story in memory. Every change is
// saved through the AnchorWriter before it becomes part of the history.
type Editor struct {
	store     Store
	writer    AnchorWriter
	publisher realtime.Publisher
	limit     int

	mu          sync.Mutex
	sessions    map[string]*session
	order       []string
	maxSessions int

	storyLocks [storyLockStripes]sync.Mutex
}

func NewEditor(store Store, writer AnchorWriter, publisher realtime.Publisher, historyLimit int) *Editor {
	return &Editor{
		store:       store,
		writer:      writer,
		publisher:   publisher,
		limit:       historyLimit,
		sessions:    make(map[string]*session),
		maxSessions: defaultMaxSessions,
	}
}

func (e *Editor) Open(ctx context.Context, userID, storyID string) (*View, error) {
	s, err := e.session(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(storyID), nil
}

func (e *Editor) Move(ctx context.Context, userID, storyID, sceneID string, sentence int) (*View, error) {
	defer e.LockStory(storyID)()

	s, err := e.session(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.history.Present().Move(s.doc, sceneID, sentence)
	if err != nil {
		return nil, err
	}

	if err := e.save(ctx, storyID, next); err != nil {
		return nil, err
	}

	s.history.Push(next)
	e.notify(storyID)
	return s.view(storyID), nil
}

func (e *Editor) Undo(ctx context.Context, userID, storyID string) (*View, error) {
	return e.step(ctx, userID, storyID, (*History).Undo, (*History).Redo, ErrNothingToUndo)
}

func (e *Editor) Redo(ctx context.Context, userID, storyID string) (*View, error) {
	return e.step(ctx, userID, storyID, (*History).Redo, (*History).Undo, ErrNothingToRedo)
}

// step applies a history move, saves it and reverts the history when the
// save fails.
func (e *Editor) step(ctx context.Context, userID, storyID string,
	apply, revert func(*History) (AnchorMap, bool), empty error,
) (*View, error) {
	defer e.LockStory(storyID)()

	s, err := e.session(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, ok := apply(s.history)
	if !ok {
		return nil, empty
	}

	if err := e.save(ctx, storyID, anchors); err != nil {
		revert(s.history)
		return nil, err
	}

	e.notify(storyID)
	return s.view(storyID), nil
}

// LockStory holds off anchor writes for storyID until unlock is called.
// Code that renumbers a story's scenes takes it around the write and the
// Invalidate that follows, so a Move never saves anchors computed from the
// old numbering. It must not be held across another LockStory call.
func (e *Editor) LockStory(storyID string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(storyID))
	mu := &e.storyLocks[h.Sum32()%storyLockStripes]
	mu.Lock()
	return mu.Unlock
}

// Invalidate drops the cached session so the next call reloads the story.
func (e *Editor) Invalidate(storyID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drop(storyID)
}

func (e *Editor) session(ctx context.Context, userID, storyID string) (*session, error) {
	e.mu.Lock()
	s, ok := e.sessions[storyID]
	e.mu.Unlock()

	if !ok {
		loaded, err := e.load(ctx, storyID)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		if s, ok = e.sessions[storyID]; !ok {
			s = loaded
			e.sessions[storyID] = s
			e.order = append(e.order, storyID)
			for len(e.order) > e.maxSessions {
				e.drop(e.order[0])
			}
		}
		e.mu.Unlock()
	}

	if s.userID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

// drop must be called with e.mu held.
func (e *Editor) drop(storyID string) {
	delete(e.sessions, storyID)
	for i, id := range e.order {
		if id == storyID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *Editor) load(ctx context.Context, storyID string) (*session, error) {
	src, err := e.store.Source(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("load placement source: %w", err)
	}

	doc := Tokenize(src.Body)
	anchors := MapScenes(doc, src.Scenes)
	for i, a := range anchors {
		if stored, ok := src.Stored[a.SceneID]; ok && stored >= 0 && stored < doc.Len() {
			anchors[i].Sentence = stored
		}
	}

	slog.Debug("placement session loaded", "story_id", storyID, "sentences", doc.Len(), "scenes", len(anchors))

	return &session{
		userID:  src.UserID,
		doc:     doc,
		history: NewHistory(anchors, e.limit),
	}, nil
}

func (e *Editor) save(ctx context.Context, storyID string, anchors AnchorMap) error {
	m := make(map[string]int, len(anchors))
	for _, a := range anchors {
		m[a.SceneID] = a.Sentence
	}
	if err := e.writer.SetAnchors(ctx, storyID, m); err != nil {
		return fmt.Errorf("save anchors of story %s: %w", storyID, err)
	}
	return nil
}

func (e *Editor) notify(storyID string) {
	e.publisher.Publish(realtime.Event{Type: realtime.EventAnchorsUpdated, StoryID: storyID})
}

func (s *session) view(storyID string) *View {
	sentences := make([]SentenceView, 0, s.doc.Len())
	for i, sen := range s.doc.Sentences {
		sentences = append(sentences, SentenceView{Sentence: sen, Text: s.doc.SentenceText(i)})
	}

	return &View{
		StoryID:    storyID,
		Paragraphs: s.doc.Paragraphs,
		Sentences:  sentences,
		Anchors:    s.history.Present(),
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
	}
}
