package jwt_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

func TestSignAndVerify_Success(t *testing.T) {
	t.Parallel()

	cfg := &config.JWT{JTILength: 8, Issuer: "storyboard"}
	signer := jwt.NewGolangJWTSigner("123", cfg)

	want := jwt.Claims{UserID: "1", Role: "admin", Audience: []string{"access"}}
	token, err := signer.Sign(want, want.Audience, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if token == "" {
		t.Fatalf("token = %q, want: non-empty", token)
	}

	got, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}

	if !reflect.DeepEqual(*got, want) {
		t.Errorf("signer.Verify(token) = %+v, want: %+v", *got, want)
	}

	if !got.HasAudience("access") || got.HasAudience("refresh") {
		t.Errorf("got.Audience = %v, want only %q", got.Audience, "access")
	}
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	cfg := &config.JWT{JTILength: 8, Issuer: "storyboard"}
	signer := jwt.NewGolangJWTSigner("123", cfg)
	otherKey := jwt.NewGolangJWTSigner("456", cfg)
	otherIssuer := jwt.NewGolangJWTSigner("123", &config.JWT{JTILength: 8, Issuer: "someone-else"})

	expired, err := signer.Sign(jwt.Claims{UserID: "1"}, nil, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	foreign, err := otherKey.Sign(jwt.Claims{UserID: "1"}, nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	wrongIssuer, err := otherIssuer.Sign(jwt.Claims{UserID: "1"}, nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, token string
	}{
		{"Expired token", expired},
		{"Signed with another key", foreign},
		{"Wrong issuer", wrongIssuer},
		{"Garbage", "not-a-token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := signer.Verify(tc.token); err == nil {
				t.Errorf("signer.Verify(%q) = nil, want: error", tc.name)
			}
		})
	}
}
