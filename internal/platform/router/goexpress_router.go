package router

import (
	"net/http"
	"slices"

	"github.com/ferdiebergado/goexpress"
)

type goexpressRouter struct {
	handler *goexpress.Router
}

var _ Router = (*goexpressRouter)(nil)

//nolint:ireturn // the app only depends on the Router abstraction.
func NewGoexpressRouter() Router {
	return &goexpressRouter{
		handler: goexpress.New(),
	}
}

func (r *goexpressRouter) Delete(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Delete(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Get(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Get(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Head(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Head(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Options(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Options(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Patch(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Patch(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Post(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Post(pattern, handler, middlewares...)
}

func (r *goexpressRouter) Put(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Put(pattern, handler, middlewares...)
}

func (r *goexpressRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *goexpressRouter) Use(middleware Middleware) {
	r.handler.Use(middleware)
}

// Group registers routes under prefix on the same mux, inheriting the
// parent's middlewares followed by the group's own.
func (r *goexpressRouter) Group(prefix string, fn func(r Router), middlewares ...Middleware) {
	gr := &goexpressRouter{
		handler: goexpress.New(),
	}
	gr.handler.SetPrefix(prefix)
	gr.handler.SetMux(r.handler.Mux())
	gr.handler.SetMiddlewares(append(slices.Clone(r.handler.Middlewares()), middlewares...))

	fn(gr)
}
