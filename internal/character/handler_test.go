package character_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

func TestHandler_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		addFunc    func(ctx context.Context, userID string, params character.CreateParams) (character.Character, error)
		wantStatus int
	}{
		{
			name: "created",
			addFunc: func(_ context.Context, _ string, params character.CreateParams) (character.Character, error) {
				return character.Character{StoryID: params.StoryID, Name: params.Name}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate name",
			addFunc: func(context.Context, string, character.CreateParams) (character.Character, error) {
				return character.Character{}, character.ErrDuplicateName
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "story not found",
			addFunc: func(context.Context, string, character.CreateParams) (character.Character, error) {
				return character.Character{}, character.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := character.NewHandler(&character.StubService{AddFunc: tt.addFunc})

			req := httptest.NewRequest(http.MethodPost, "/stories/story-1/characters", http.NoBody)
			ctx := auth.ContextWithUser(req.Context(), &jwt.Claims{UserID: "user-1"})
			ctx = web.NewContextWithParams(ctx, character.CreateRequest{Name: "Mara", Description: "keeper"})
			req = req.WithContext(ctx)
			req.SetPathValue("id", "story-1")
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf(message.FmtErrStatusCode, rec.Code, tt.wantStatus)
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}

			data, err := web.DecodeData[character.CharacterData](rec.Body)
			if err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if data.StoryID != "story-1" || data.Name != "Mara" || data.States == nil {
				t.Errorf("data = %+v", data)
			}
		})
	}
}
