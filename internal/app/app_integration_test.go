//go:build integration

package app_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ferdiebergado/gopherkit/env"
	"github.com/ferdiebergado/storyboard/internal/app"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/pkg/security"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/email"
	"github.com/ferdiebergado/storyboard/internal/platform/functions"
	"github.com/ferdiebergado/storyboard/internal/platform/hash"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
	"github.com/ferdiebergado/storyboard/internal/platform/router"
	"github.com/ferdiebergado/storyboard/internal/platform/validation"
	"github.com/ferdiebergado/storyboard/internal/realtime"
)

func setupApp(t *testing.T) (api *app.App, cfg *config.Config) {
	t.Helper()

	if err := env.Load("../../.env.testing"); err != nil {
		t.Fatalf("load env: %v", err)
	}

	cfg, err := config.Load("../../config.json")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Billing.CatalogFile = "../../catalog.yaml"

	conn, err := db.NewPostgresDB(context.Background(), cfg.DB)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	const key = "testsecret"
	signer := jwt.NewGolangJWTSigner(key, cfg.JWT)
	provider := &app.Provider{
		DB:        conn,
		Signer:    signer,
		Mailer:    &email.SMTPMailer{},
		Validator: validation.NewGoPlaygroundValidator(),
		Hasher:    hash.NewArgon2Hasher(cfg.Argon2, key),
		Router:    router.NewGoexpressRouter(),
		CSRFBaker: security.NewCSRFCookieBaker(cfg.CSRF, key),
		TxMgr:     db.NewSQLTxManager(conn),
		Invoker:   &functions.StubInvoker{},
		Broker:    realtime.NewBroker(4),
	}

	return app.New(cfg, provider, nil, nil), cfg
}

func TestIntegration_StartAndShutdown(t *testing.T) {
	api, cfg := setupApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- api.Start(ctx)
	}()

	time.Sleep(300 * time.Millisecond)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/billing/catalog", cfg.Server.Port), http.NoBody)
	if err != nil {
		t.Fatalf("new http request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /billing/catalog: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want: %d", resp.StatusCode, http.StatusOK)
	}

	if err := api.Shutdown(); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	cancel()
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("server error: %v", err)
	}
}
