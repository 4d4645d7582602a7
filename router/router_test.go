package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

func testRouter(t *testing.T) *Router {
	t.Helper()
	rt := New(func(r *http.Request) (bool, httpserver.RequestAuth) {
		if r.Header.Get("Authorization") != "Bearer good" {
			return false, httpserver.RequestAuth{}
		}
		// route metadata is already available to the auth hook
		assert.Equal(t, "GetThing", httpserver.GetRouteName(r.Context()))
		return true, httpserver.RequestAuth{Type: AuthBearer, Client: "u1"}
	})

	rt.Register(httpserver.Route{Name: "Public", Method: http.MethodGet, Path: "/public", AuthType: AuthNone},
		httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, httpserver.GetRequestAuth(ctx))
			assert.Equal(t, AuthNone, httpserver.GetAuthType(ctx))
			w.WriteHeader(http.StatusNoContent)
		}))

	rt.Register(httpserver.Route{Name: "GetThing", Method: http.MethodGet, Path: "/things/{id}", AuthType: AuthBearer},
		httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			auth := httpserver.GetRequestAuth(ctx)
			require.NotNil(t, auth)
			assert.Equal(t, "GetThing", httpserver.GetRouteName(ctx))
			assert.Equal(t, http.MethodGet, httpserver.GetRouteMethod(ctx))
			assert.Equal(t, "/things/{id}", httpserver.GetRoutePath(ctx))
			w.Write([]byte(auth.Client + ":" + mux.Vars(r)["id"]))
		}))

	return rt
}

func TestRouter_PublicRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_BearerRoute(t *testing.T) {
	rt := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1:42", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/things/42", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Please authenticate."}`, rec.Body.String())
}

func TestRouter_MissingAuthCallback(t *testing.T) {
	rt := New(nil)
	rt.Register(httpserver.Route{Name: "Private", Method: http.MethodGet, Path: "/private", AuthType: AuthBearer},
		httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	rt := testRouter(t)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/public", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
