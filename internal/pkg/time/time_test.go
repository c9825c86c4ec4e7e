package time_test

import (
	"encoding/json"
	"testing"
	"time"

	timex "github.com/ferdiebergado/storyboard/internal/pkg/time"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"Minutes", `"15m"`, 15 * time.Minute, false},
		{"Milliseconds", `"250ms"`, 250 * time.Millisecond, false},
		{"Seconds as number", `90`, 90 * time.Second, false},
		{"Boolean", `true`, 0, true},
		{"Negative", `"-5s"`, 0, true},
		{"Invalid duration", `"fifteen"`, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var d timex.Duration
			err := json.Unmarshal([]byte(tc.input), &d)
			if (err != nil) != tc.wantErr {
				t.Fatalf("json.Unmarshal(%s) error = %v, wantErr: %v", tc.input, err, tc.wantErr)
			}

			if d.Duration != tc.want {
				t.Errorf("d.Duration = %v, want: %v", d.Duration, tc.want)
			}
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		Timeout timex.Duration `json:"timeout"`
	}{timex.Duration{Duration: 90 * time.Second}})
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(b), `{"timeout":"1m30s"}`; got != want {
		t.Errorf("json.Marshal = %s, want: %s", got, want)
	}
}
