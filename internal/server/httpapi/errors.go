package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
)

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrUnsupportedType),
		errors.Is(err, common.ErrPayloadTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newHTTPErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			code    int
			message any
		)

		var httpErr *echo.HTTPError
		var validationErrs validator.ValidationErrors

		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = httpErr.Message
			if code >= http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		case errors.As(err, &validationErrs):
			code = http.StatusBadRequest
			if v, ok := c.Echo().Validator.(*requestValidator); ok {
				message = v.translate(validationErrs)
			} else {
				message = err.Error()
			}
		default:
			code = statusFor(err)
			message = err.Error()
			if code == http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		}

		if code >= http.StatusInternalServerError {
			req := c.Request()
			logger.Error(req.Context(), "request failed",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"method", req.Method,
				"path", req.URL.Path,
				"user_id", currentUserID(c),
				"error", err,
			)
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, message)
		}
		if sendErr != nil {
			logger.Error(c.Request().Context(), "write error response", "error", sendErr)
		}
	}
}
