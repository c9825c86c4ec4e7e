package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/billing"
	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/gateway"
	"github.com/ferdiebergado/storyboard/internal/imagegen"
	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/ferdiebergado/storyboard/internal/platform/router"
	"github.com/ferdiebergado/storyboard/internal/realtime"
	"github.com/ferdiebergado/storyboard/internal/scene"
	"github.com/ferdiebergado/storyboard/internal/story"
	"github.com/ferdiebergado/storyboard/internal/user"
)

// interval between SSE keep-alive comments
const keepAlive = 25 * time.Second

type App struct {
	server          *http.Server
	config          *config.Config
	provider        *Provider
	router          router.Router
	middlewares     []router.Middleware
	stop            context.CancelFunc
	shutdownTimeout time.Duration
}

func (a *App) registerMiddlewares() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}
}

func (a *App) setupRoutes() error {
	cfg := a.config
	p := a.provider
	maxBody := cfg.Server.MaxBodyBytes

	catalog, err := billing.LoadCatalog(cfg.Billing.CatalogFile)
	if err != nil {
		return err
	}
	billingSvc := billing.NewService(billing.NewRepository(p.DB), p.TxMgr, p.Invoker, catalog, cfg.Billing)

	userSvc := user.NewService(user.NewRepository(p.DB))
	authProviders := &auth.Providers{
		Hasher:   p.Hasher,
		Signer:   p.Signer,
		Mailer:   p.Mailer,
		TxMgr:    p.TxMgr,
		Crediter: billingSvc,
	}
	authSvc := auth.NewService(auth.NewRepository(p.DB), userSvc, authProviders, cfg)

	// the editor and the scene service refer to each other: the editor
	// writes anchors through the service and the service drops editor
	// sessions after a reorder.
	var sceneSvc scene.Service
	writeAnchors := placement.AnchorWriterFunc(func(ctx context.Context, storyID string, anchors map[string]int) error {
		return sceneSvc.SetAnchors(ctx, storyID, anchors)
	})
	editor := placement.NewEditor(placement.NewRepository(p.DB), writeAnchors, p.Broker, cfg.Placement.HistoryLimit)
	sceneSvc = scene.NewService(scene.NewRepository(p.DB), p.TxMgr, p.Broker, editor)

	characterSvc := character.NewService(character.NewRepository(p.DB), p.Broker)

	remote, err := story.NewRemoteSegmenter(p.Invoker)
	if err != nil {
		return err
	}
	storySvc := story.NewService(story.NewRepository(p.DB), &story.Deps{
		Scenes:     sceneSvc,
		Characters: characterSvc,
		TxMgr:      p.TxMgr,
		Segmenter: story.FallbackSegmenter{
			Primary:   remote,
			Secondary: story.ParagraphSegmenter{MaxSentences: cfg.Placement.SentencesPerScene},
		},
		Publisher:   p.Broker,
		Invalidator: editor,
	})

	imageSvc := imagegen.NewService(sceneSvc, characterSvc, billingSvc, p.Invoker, p.Broker, cfg.ImageGen)

	proxy, err := gateway.NewProxy(cfg.Gateway, nil)
	if err != nil {
		return err
	}

	authorize := func(ctx context.Context, storyID string) error {
		userID, err := auth.UserFromContext(ctx)
		if err != nil {
			return err
		}
		return storySvc.Authorize(ctx, userID, storyID)
	}

	h := &handlers{
		auth:      auth.NewHandler(authSvc, cfg, p.CSRFBaker),
		user:      user.NewHandler(userSvc, auth.UserFromContext),
		story:     story.NewHandler(storySvc),
		scene:     scene.NewHandler(sceneSvc),
		character: character.NewHandler(characterSvc),
		placement: placement.NewHandler(editor),
		image:     imagegen.NewHandler(imageSvc),
		billing:   billing.NewHandler(billingSvc, maxBody),
		events:    realtime.NewHandler(p.Broker, authorize, keepAlive),
		gateway:   proxy,
	}

	mountAuthRoutes(a.router, h.auth, p, cfg)
	mountUserRoutes(a.router, h.user, p.Signer)
	mountStoryRoutes(a.router, h, p, maxBody)
	mountSceneRoutes(a.router, h, p, maxBody)
	mountBillingRoutes(a.router, h.billing, p, maxBody)
	mountGatewayRoutes(a.router, h.gateway, p.Signer)
	return nil
}

func (a *App) Start(ctx context.Context) error {
	a.registerMiddlewares()
	if err := a.setupRoutes(); err != nil {
		return fmt.Errorf("setup routes: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening...", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		slog.Info("Server has stopped.")
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received.")
		return nil
	case err := <-serverErr:
		return err
	}
}

// Shutdown cancels the base context of in-flight requests, which ends
// open event streams, then waits for the server to drain.
func (a *App) Shutdown() error {
	slog.Info("Shutting down server...")
	a.stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// New builds the server. edge middlewares wrap the whole router and see
// every request, including unmatched paths and CORS preflights. Route
// middlewares run after the route is matched.
func New(cfg *config.Config, provider *Provider, edge, route []router.Middleware) *App {
	serverCtx, stop := context.WithCancel(context.Background())
	serverCfg := cfg.Server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", serverCfg.Port),
		Handler: router.Chain(provider.Router, edge...),
		BaseContext: func(_ net.Listener) context.Context {
			return serverCtx
		},
		ReadTimeout:  serverCfg.ReadTimeout.Duration,
		WriteTimeout: serverCfg.WriteTimeout.Duration,
		IdleTimeout:  serverCfg.IdleTimeout.Duration,
	}

	return &App{
		config:          cfg,
		provider:        provider,
		router:          provider.Router,
		server:          server,
		middlewares:     route,
		stop:            stop,
		shutdownTimeout: serverCfg.ShutdownTimeout.Duration,
	}
}
