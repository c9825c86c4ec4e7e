package security_test

import (
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/pkg/security"
	timex "github.com/ferdiebergado/storyboard/internal/pkg/time"
)

func TestSHA256Hash_Deterministic(t *testing.T) {
	t.Parallel()

	hash, err := security.SHA256Hash("payload", "key")
	if err != nil {
		t.Fatal(err)
	}

	otherHash, err := security.SHA256Hash("payload", "key")
	if err != nil {
		t.Fatal(err)
	}

	if hex.EncodeToString(hash) != hex.EncodeToString(otherHash) {
		t.Error("hash mismatch")
	}
}

func TestVerifyHexSignature(t *testing.T) {
	t.Parallel()

	const key = "whsec"
	payload := []byte(`{"id":"evt_1"}`)
	mac, err := security.SHA256Hash(string(payload), key)
	if err != nil {
		t.Fatal(err)
	}
	sig := hex.EncodeToString(mac)

	tests := []struct {
		name    string
		sig     string
		wantErr bool
	}{
		{"Valid signature", sig, false},
		{"Valid signature with prefix", "sha256=" + sig, false},
		{"Wrong signature", hex.EncodeToString([]byte("nope")), true},
		{"Not hex", "zz", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := security.VerifyHexSignature(payload, tc.sig, key)
			if (err != nil) != tc.wantErr {
				t.Errorf("security.VerifyHexSignature(%q) = %v, wantErr: %v", tc.sig, err, tc.wantErr)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, header, want string
		wantErr            bool
	}{
		{"Valid header", "Bearer abc.def", "abc.def", false},
		{"Missing header", "", "", true},
		{"Wrong scheme", "Basic abc", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			got, err := security.ExtractBearerToken(req)
			if (err != nil) != tc.wantErr {
				t.Fatalf("security.ExtractBearerToken() error = %v, wantErr: %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("security.ExtractBearerToken() = %q, want: %q", got, tc.want)
			}
		})
	}
}

func TestCSRFCookieBaker(t *testing.T) {
	t.Parallel()

	cfg := &config.CSRF{
		CookieName:   "csrf_token",
		TokenLength:  16,
		CookieMaxAge: timex.Duration{Duration: time.Hour},
	}
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	baker := security.NewCSRFCookieBaker(cfg, "pepper")
	baker.SetClock(func() time.Time { return issuedAt })

	cookie, err := baker.Bake()
	if err != nil {
		t.Fatalf("baker.Bake() = %v", err)
	}
	if cookie.Name != "csrf_token" || cookie.HttpOnly || cookie.MaxAge != 3600 {
		t.Errorf("cookie = %+v, want a script readable csrf_token lasting an hour", cookie)
	}
	if n := strings.Count(cookie.Value, "."); n != 2 {
		t.Fatalf("cookie.Value = %q, want nonce.expiry.signature", cookie.Value)
	}

	forged := strings.Replace(cookie.Value, strconv.FormatInt(issuedAt.Add(time.Hour).Unix(), 10),
		strconv.FormatInt(issuedAt.Add(48*time.Hour).Unix(), 10), 1)

	otherKey := security.NewCSRFCookieBaker(cfg, "other-pepper")
	otherKey.SetClock(func() time.Time { return issuedAt })

	tests := []struct {
		name  string
		baker *security.CSRFCookieBaker
		value string
		at    time.Time
		want  error
	}{
		{"fresh token", baker, cookie.Value, issuedAt.Add(time.Minute), nil},
		{"expired token", baker, cookie.Value, issuedAt.Add(time.Hour), security.ErrTokenExpired},
		{"extended expiry", baker, forged, issuedAt, security.ErrBadSignature},
		{"signed with another key", otherKey, cookie.Value, issuedAt, security.ErrBadSignature},
		{"no separators", baker, "token", issuedAt, security.ErrMalformedToken},
		{"empty", baker, "", issuedAt, security.ErrMalformedToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			at := tc.at
			b := *tc.baker
			b.SetClock(func() time.Time { return at })

			err := b.Check(&http.Cookie{Name: cfg.CookieName, Value: tc.value})
			if !errors.Is(err, tc.want) {
				t.Errorf("baker.Check(%q) = %v, want: %v", tc.value, err, tc.want)
			}
		})
	}
}
