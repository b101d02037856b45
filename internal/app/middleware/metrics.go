package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kidpech/user_service/internal/infrastructure/monitoring"
)

// UserOperationMetrics counts user operations by name and outcome. The
// operation is derived from the matched route, so it must run inside the
// users group.
func UserOperationMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		op := userOperation(c.Request.Method, c.FullPath())
		if op == "" {
			return
		}
		monitoring.ObserveUserOperation(op, outcome(c.Writer.Status()))
	}
}

func userOperation(method, route string) string {
	switch {
	case route == "":
		return ""
	case strings.HasSuffix(route, "/exists"):
		return "exists"
	case strings.HasSuffix(route, "/search"):
		return "search"
	case strings.Contains(route, "/username/"), strings.Contains(route, "/email/"):
		return "lookup"
	}
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodGet:
		if strings.HasSuffix(route, "/:id") {
			return "get"
		}
		return "list"
	}
	return ""
}

func outcome(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status >= 400:
		return "invalid"
	default:
		return "ok"
	}
}
