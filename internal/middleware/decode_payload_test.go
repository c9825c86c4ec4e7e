package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ferdiebergado/storyboard/internal/middleware"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
	"github.com/ferdiebergado/storyboard/internal/platform/validation"
)

type moveRequest struct {
	SceneID  string `json:"scene_id" validate:"required,uuid"`
	Sentence int    `json:"sentence" validate:"gte=0"`
}

const sceneID = "3d594650-3436-11e5-bf21-0800200c9a67"

// echo writes back the decoded params so tests can see what reached the
// handler.
func echo[T any](t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := web.ParamsFromContext[T](r.Context())
		if err != nil {
			t.Errorf("web.ParamsFromContext = %v", err)
		}
		w.Header().Set(web.HeaderContentType, web.MimeJSON)
		if err := json.NewEncoder(w).Encode(params); err != nil {
			t.Errorf("encode params: %v", err)
		}
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		maxBytes int64
		code     int
		want     string
	}{
		{"move request", `{"scene_id":"` + sceneID + `","sentence":3}`, 128, http.StatusOK, `{"scene_id":"` + sceneID + `","sentence":3}`},
		{"empty body decodes to zero value", ``, 128, http.StatusOK, `{"scene_id":"","sentence":0}`},
		{"whitespace after object", `{"sentence":1}` + "\n\n", 128, http.StatusOK, `{"scene_id":"","sentence":1}`},
		{"body over the limit", `{"scene_id":"` + sceneID + `"}`, 8, http.StatusRequestEntityTooLarge, ""},
		{"unknown field", `{"sentence":1,"paragraph":2}`, 128, http.StatusUnprocessableEntity, `"field":"paragraph"`},
		{"wrong type names the field", `{"sentence":"three"}`, 128, http.StatusUnprocessableEntity, `"sentence":"sentence must be of type int"`},
		{"two objects", `{"sentence":1}{"sentence":2}`, 128, http.StatusBadRequest, ""},
		{"stray closing brace", `{"sentence":1}}`, 128, http.StatusBadRequest, ""},
		{"truncated", `{"scene_id"`, 128, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/stories/s1/placement/moves", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			middleware.DecodePayload[moveRequest](tt.maxBytes)(echo[moveRequest](t)).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("rec.Code = %d, want: %d, body: %s", rec.Code, tt.code, rec.Body)
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("rec.Body = %s, want it to contain %s", rec.Body, tt.want)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	v := validation.NewGoPlaygroundValidator()

	tests := []struct {
		name   string
		params any
		code   int
		want   string
	}{
		{"valid move", moveRequest{SceneID: sceneID, Sentence: 0}, http.StatusOK, `"sentence":0`},
		{"missing scene", moveRequest{Sentence: 2}, http.StatusUnprocessableEntity, `"scene_id":"scene_id is required"`},
		{"negative sentence", moveRequest{SceneID: sceneID, Sentence: -1}, http.StatusUnprocessableEntity, `"sentence":"sentence must be greater than or equal to 0"`},
		{"params of another type", struct{ Title string }{"x"}, http.StatusBadRequest, `"message":"Invalid input."`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := web.NewContextWithParams(t.Context(), tt.params)
			req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/", http.NoBody)
			rec := httptest.NewRecorder()
			middleware.ValidateInput[moveRequest](v)(echo[moveRequest](t)).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("rec.Code = %d, want: %d, body: %s", rec.Code, tt.code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("rec.Body = %s, want it to contain %s", rec.Body, tt.want)
			}
		})
	}
}

func TestDecodeThenValidate_StubValidator(t *testing.T) {
	t.Parallel()

	var seen any
	stub := &validation.StubValidator{
		ValidateStructFunc: func(s any) map[string]string {
			seen = s
			return nil
		},
	}

	chain := middleware.DecodePayload[moveRequest](128)(
		middleware.ValidateInput[moveRequest](stub)(echo[moveRequest](t)))

	body := `{"scene_id":"` + sceneID + `","sentence":5}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("rec.Code = %d, want: %d", rec.Code, http.StatusOK)
	}
	if got, ok := seen.(moveRequest); !ok || got.Sentence != 5 {
		t.Errorf("validator saw %#v, want the decoded moveRequest", seen)
	}
}
