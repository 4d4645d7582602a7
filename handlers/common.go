package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/models"
)

// logRequest logs with the route name, method and path of the request
// prefixed, plus the caller id on authenticated routes
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)

	logMsg := routeName + " - " + method + " - " + path
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	if auth := httpserver.GetRequestAuth(ctx); auth != nil {
		allFields = append(allFields, zap.String("user_id", auth.Client))
	}

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// caller returns the authenticated user of the request
func caller(ctx context.Context) *models.User {
	auth := httpserver.GetRequestAuth(ctx)
	if auth == nil {
		return nil
	}
	user, _ := auth.Claims.(*models.User)
	return user
}

// writeJSON writes data as a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
