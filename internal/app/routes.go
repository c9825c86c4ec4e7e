package app

import (
	"github.com/ferdiebergado/storyboard/internal/auth"
	"github.com/ferdiebergado/storyboard/internal/billing"
	"github.com/ferdiebergado/storyboard/internal/character"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/gateway"
	"github.com/ferdiebergado/storyboard/internal/imagegen"
	"github.com/ferdiebergado/storyboard/internal/middleware"
	"github.com/ferdiebergado/storyboard/internal/placement"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
	"github.com/ferdiebergado/storyboard/internal/platform/router"
	"github.com/ferdiebergado/storyboard/internal/platform/validation"
	"github.com/ferdiebergado/storyboard/internal/realtime"
	"github.com/ferdiebergado/storyboard/internal/scene"
	"github.com/ferdiebergado/storyboard/internal/story"
	"github.com/ferdiebergado/storyboard/internal/user"
)

const roleAdmin = "admin"

type handlers struct {
	auth      *auth.Handler
	user      *user.Handler
	story     *story.Handler
	scene     *scene.Handler
	character *character.Handler
	placement *placement.Handler
	image     *imagegen.Handler
	billing   *billing.Handler
	events    *realtime.Handler
	gateway   *gateway.Proxy
}

// payload decodes and validates a JSON body into T.
func payload[T any](maxBody int64, v validation.Validator) []router.Middleware {
	return []router.Middleware{
		middleware.DecodePayload[T](maxBody),
		middleware.ValidateInput[T](v),
	}
}

func mountAuthRoutes(r router.Router, handler *auth.Handler, p *Provider, cfg *config.Config) {
	maxBody := cfg.Server.MaxBodyBytes
	csrf := middleware.CSRFGuard(cfg.CSRF, p.CSRFBaker)

	r.Group("/auth", func(gr router.Router) {
		gr.Post("/register", handler.RegisterUser, payload[auth.RegisterUserRequest](maxBody, p.Validator)...)
		gr.Post("/login", handler.LoginUser, payload[auth.UserLoginRequest](maxBody, p.Validator)...)
		gr.Get("/verify", handler.VerifyEmail, auth.VerifyToken(p.Signer, auth.AudienceVerify))
		gr.Post("/refresh", handler.RefreshToken, csrf)
		gr.Post("/logout", handler.LogoutUser, csrf)
		gr.Post("/forgot", handler.ForgotPassword, payload[auth.ForgotPasswordRequest](maxBody, p.Validator)...)
		gr.Post("/reset", handler.ResetPassword,
			append([]router.Middleware{auth.VerifyToken(p.Signer, auth.AudienceReset)},
				payload[auth.ResetPasswordRequest](maxBody, p.Validator)...)...)
	})
}

func mountUserRoutes(r router.Router, handler *user.Handler, signer jwt.Signer) {
	r.Group("/users", func(gr router.Router) {
		gr.Get("/me", handler.Me)
		gr.Get("/", handler.List, auth.RequireRole(roleAdmin))
	}, auth.RequireToken(signer))
}

func mountStoryRoutes(r router.Router, h *handlers, p *Provider, maxBody int64) {
	r.Group("/stories", func(gr router.Router) {
		gr.Get("/", h.story.List)
		gr.Post("/", h.story.Import, payload[story.ImportRequest](maxBody, p.Validator)...)
		gr.Get("/{id}", h.story.Show)
		gr.Delete("/{id}", h.story.Delete)
		gr.Get("/{id}/export.pdf", h.story.ExportPDF)

		gr.Get("/{id}/scenes", h.scene.List)

		gr.Get("/{id}/characters", h.character.List)
		gr.Post("/{id}/characters", h.character.Create, payload[character.CreateRequest](maxBody, p.Validator)...)

		gr.Get("/{id}/placement", h.placement.Show)
		gr.Post("/{id}/placement/moves", h.placement.Move, payload[placement.MoveRequest](maxBody, p.Validator)...)
		gr.Post("/{id}/placement/undo", h.placement.Undo)
		gr.Post("/{id}/placement/redo", h.placement.Redo)

		gr.Get("/{id}/events", h.events.Stream)
	}, auth.RequireToken(p.Signer))
}

func mountSceneRoutes(r router.Router, h *handlers, p *Provider, maxBody int64) {
	r.Group("/scenes", func(gr router.Router) {
		gr.Get("/{id}", h.scene.Show)
		gr.Patch("/{id}", h.scene.Update, payload[scene.UpdateRequest](maxBody, p.Validator)...)
		gr.Post("/{id}/reorder", h.scene.Reorder, payload[scene.ReorderRequest](maxBody, p.Validator)...)
		gr.Post("/{id}/regenerate", h.image.Regenerate, payload[imagegen.RegenerateRequest](maxBody, p.Validator)...)
	}, auth.RequireToken(p.Signer))

	r.Group("/characters", func(gr router.Router) {
		gr.Patch("/{id}", h.character.Update, payload[character.UpdateRequest](maxBody, p.Validator)...)
		gr.Post("/{id}/states", h.character.AddState, payload[character.StateRequest](maxBody, p.Validator)...)
	}, auth.RequireToken(p.Signer))
}

func mountBillingRoutes(r router.Router, handler *billing.Handler, p *Provider, maxBody int64) {
	r.Get("/billing/catalog", handler.Catalog)
	// signed by the payment provider, not by a user token
	r.Post("/billing/webhook", handler.Webhook)

	r.Group("/billing", func(gr router.Router) {
		gr.Get("/balance", handler.Balance)
		gr.Get("/transactions", handler.Transactions)
		gr.Post("/checkout", handler.Checkout, payload[billing.CheckoutRequest](maxBody, p.Validator)...)
	}, auth.RequireToken(p.Signer))
}

// mountGatewayRoutes relays every method under the admin prefix. OPTIONS
// never reaches it: the CORS edge middleware answers preflights.
func mountGatewayRoutes(r router.Router, proxy *gateway.Proxy, signer jwt.Signer) {
	pattern := gateway.Prefix + "/"
	guards := []router.Middleware{auth.RequireToken(signer), auth.RequireRole(roleAdmin)}

	r.Get(pattern, proxy.ServeHTTP, guards...)
	r.Head(pattern, proxy.ServeHTTP, guards...)
	r.Post(pattern, proxy.ServeHTTP, guards...)
	r.Put(pattern, proxy.ServeHTTP, guards...)
	r.Patch(pattern, proxy.ServeHTTP, guards...)
	r.Delete(pattern, proxy.ServeHTTP, guards...)
}
