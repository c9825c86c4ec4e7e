package app

import (
	"database/sql"
	"fmt"
	"net/http"

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

// broker buffer per subscriber
const eventBuffer = 16

type Provider struct {
	DB        *sql.DB
	Signer    jwt.Signer
	Mailer    email.Mailer
	Validator validation.Validator
	Hasher    hash.Hasher
	Router    router.Router
	CSRFBaker security.Baker
	TxMgr     db.TxManager
	Invoker   functions.Invoker
	Broker    *realtime.Broker
}

func newProvider(cfg *config.Config, securityKey string, dbConn *sql.DB) (*Provider, error) {
	signer := jwt.NewGolangJWTSigner(securityKey, cfg.JWT)
	mailer, err := email.NewSMTPMailer(cfg.SMTP, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("new smtp mailer: %w", err)
	}

	tokens := functions.NewSignerTokenSource(signer, functions.Audience, cfg.JWT.ServiceTTL.Duration)
	invoker := functions.NewClient(
		cfg.Functions.BaseURL,
		tokens,
		functions.PolicyFromConfig(cfg.Functions),
		&http.Client{Timeout: cfg.Functions.Timeout.Duration},
	)

	provider := &Provider{
		DB:        dbConn,
		Signer:    signer,
		Hasher:    hash.NewArgon2Hasher(cfg.Argon2, securityKey),
		Mailer:    mailer,
		Router:    router.NewGoexpressRouter(),
		Validator: validation.NewGoPlaygroundValidator(),
		CSRFBaker: security.NewCSRFCookieBaker(cfg.CSRF, securityKey),
		TxMgr:     db.NewSQLTxManager(dbConn),
		Invoker:   invoker,
		Broker:    realtime.NewBroker(eventBuffer),
	}

	return provider, nil
}
