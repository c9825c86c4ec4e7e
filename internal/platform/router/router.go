package router

import (
	"net/http"
)

type Middleware = func(next http.Handler) http.Handler

type Router interface {
	http.Handler

	Use(middleware Middleware)
	Get(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Post(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Put(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Patch(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Delete(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Options(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Head(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Group(prefix string, fn func(r Router), middlewares ...Middleware)
}
