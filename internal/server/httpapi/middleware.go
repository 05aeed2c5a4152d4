package httpapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/auth"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// requestLogger logs one line per request. Errors are rendered here so the
// logged status is the one the client sees.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		req := c.Request()
		s.logger.Info(req.Context(), "request",
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start).String(),
		)
		return nil
	}
}

// requireAccessToken accepts "Authorization: Bearer <jwt>" and stores the
// caller's id and role on the context.
func (s *Server) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			return common.ErrUnauthenticated
		}

		claims, err := auth.ParseToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			return err
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func currentRole(c echo.Context) models.Role {
	r, _ := c.Get(roleKey).(models.Role)
	return r
}
