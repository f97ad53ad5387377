package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"fareRadar/pkg/logger"

	jsonres "fareRadar/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every uncaught error as the stable JSON envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled HTTP error", "path", c.Path(), "error", err)
	}

	errCode := strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	if jerr := c.JSON(code, jsonres.Error(errCode, message, nil)); jerr != nil {
		logger.Error("Failed to write error response", "error", jerr)
	}
}
