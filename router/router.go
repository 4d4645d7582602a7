// Package router serves go-utils httpserver routes on a gorilla/mux router
// that is exposed as a plain http.Handler, so it can be wrapped with CORS,
// exercised with httptest and shut down gracefully.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Auth types a route can declare
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
)

// Router is an http.Handler serving the registered routes
type Router struct {
	mux       *mux.Router
	checkAuth httpserver.AuthCallback
}

// New creates a router that authenticates every route not declared AuthNone
// with checkAuth
func New(checkAuth httpserver.AuthCallback) *Router {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	m.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return &Router{mux: m, checkAuth: checkAuth}
}

// Register adds a route. The handler's context carries the httpserver route
// keys and, on authenticated routes, the httpserver.RequestAuth.
func (rt *Router) Register(route httpserver.Route, handler httpserver.Handler) {
	rt.mux.HandleFunc(route.Path, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := context.WithValue(r.Context(), httpserver.RouteNameKey, route.Name)
		ctx = context.WithValue(ctx, httpserver.RouteMethodKey, route.Method)
		ctx = context.WithValue(ctx, httpserver.RoutePathKey, route.Path)
		ctx = context.WithValue(ctx, httpserver.AuthTypeKey, route.AuthType)

		if route.AuthType != AuthNone {
			ok, auth := false, httpserver.RequestAuth{}
			if rt.checkAuth != nil {
				ok, auth = rt.checkAuth(r.WithContext(ctx))
			}
			if !ok {
				logger.Info("Unauthenticated request",
					zap.String("route", route.Name),
					zap.String("method", route.Method),
					zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "Please authenticate.")
				return
			}
			ctx = context.WithValue(ctx, httpserver.RequestAuthKey, auth)
		}

		handler.Handle(ctx, w, r.WithContext(ctx))

		logger.Debug("Request served",
			zap.String("route", route.Name),
			zap.String("method", route.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	}).Methods(route.Method).Name(route.Name)
}

// ServeHTTP implements http.Handler
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
