package server

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/httpserver"

	"task-manager/auth"
	"task-manager/email"
	"task-manager/handlers"
	"task-manager/router"
	"task-manager/store"
)

// App holds the dependencies the routes are built from
type App struct {
	DB             *sqlx.DB
	Users          *store.UserStore
	Tasks          *store.TaskStore
	Tokens         *auth.TokenManager
	Notifier       *email.Notifier
	AvatarMaxBytes int64
}

// NewRouter registers every route of the service
func NewRouter(app *App) *router.Router {
	authenticator := auth.NewAuthenticator(app.Tokens, app.Users)
	rt := router.New(authenticator.Check)

	healthHandler := handlers.NewHealthHandler(app.DB)
	userHandler := handlers.NewUserHandler(app.Users, app.Tokens, app.Notifier, app.AvatarMaxBytes)
	taskHandler := handlers.NewTaskHandler(app.Tasks)

	routes := []struct {
		route   httpserver.Route
		handler httpserver.HandlerFunc
	}{
		{httpserver.Route{Name: "HealthCheck", Method: http.MethodGet, Path: "/health", AuthType: router.AuthNone}, healthHandler.HealthCheck},
		{httpserver.Route{Name: "ReadinessCheck", Method: http.MethodGet, Path: "/readyz", AuthType: router.AuthNone}, healthHandler.ReadinessCheck},

		{httpserver.Route{Name: "CreateUser", Method: http.MethodPost, Path: "/users", AuthType: router.AuthNone}, userHandler.CreateUser},
		{httpserver.Route{Name: "Login", Method: http.MethodPost, Path: "/users/login", AuthType: router.AuthNone}, userHandler.Login},
		{httpserver.Route{Name: "Logout", Method: http.MethodPost, Path: "/users/logout", AuthType: router.AuthBearer}, userHandler.Logout},
		{httpserver.Route{Name: "LogoutAll", Method: http.MethodPost, Path: "/users/logoutAll", AuthType: router.AuthBearer}, userHandler.LogoutAll},
		{httpserver.Route{Name: "GetMe", Method: http.MethodGet, Path: "/users/me", AuthType: router.AuthBearer}, userHandler.GetMe},
		{httpserver.Route{Name: "UpdateMe", Method: http.MethodPatch, Path: "/users/me", AuthType: router.AuthBearer}, userHandler.UpdateMe},
		{httpserver.Route{Name: "DeleteMe", Method: http.MethodDelete, Path: "/users/me", AuthType: router.AuthBearer}, userHandler.DeleteMe},
		{httpserver.Route{Name: "UploadAvatar", Method: http.MethodPost, Path: "/users/me/avatar", AuthType: router.AuthBearer}, userHandler.UploadAvatar},
		{httpserver.Route{Name: "DeleteAvatar", Method: http.MethodDelete, Path: "/users/me/avatar", AuthType: router.AuthBearer}, userHandler.DeleteAvatar},
		{httpserver.Route{Name: "GetAvatar", Method: http.MethodGet, Path: "/users/{id}/avatar", AuthType: router.AuthNone}, userHandler.GetAvatar},

		{httpserver.Route{Name: "CreateTask", Method: http.MethodPost, Path: "/tasks", AuthType: router.AuthBearer}, taskHandler.CreateTask},
		{httpserver.Route{Name: "ListTasks", Method: http.MethodGet, Path: "/tasks", AuthType: router.AuthBearer}, taskHandler.GetTasks},
		{httpserver.Route{Name: "GetTask", Method: http.MethodGet, Path: "/tasks/{id}", AuthType: router.AuthBearer}, taskHandler.GetTask},
		{httpserver.Route{Name: "UpdateTask", Method: http.MethodPatch, Path: "/tasks/{id}", AuthType: router.AuthBearer}, taskHandler.UpdateTask},
		{httpserver.Route{Name: "DeleteTask", Method: http.MethodDelete, Path: "/tasks/{id}", AuthType: router.AuthBearer}, taskHandler.DeleteTask},
	}

	for _, r := range routes {
		rt.Register(r.route, r.handler)
	}

	return rt
}
