package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/goimagesearch/internal/core"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler writes errors as plain text with a status derived from the
// error kind. Unknown errors, remote failures included, become 500.
func HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "method", ctx.Request().Method,
			"path", ctx.Path(), "error", err)
	} else {
		slog.Warn("request rejected", "status", status, "method", ctx.Request().Method,
			"path", ctx.Path(), "error", err)
	}

	var writeErr error
	if ctx.Request().Method == http.MethodHead {
		writeErr = ctx.NoContent(status)
	} else {
		writeErr = ctx.String(status, message)
	}
	if writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}

func statusOf(err error) (int, string) {
	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		return httpError.Code, fmt.Sprint(httpError.Message)
	}

	switch {
	case errors.Is(err, core.ErrInvalidObject),
		errors.Is(err, core.ErrInvalidImage),
		errors.Is(err, core.ErrInvalidConfiguration):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrObjectNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
