package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as a JSON envelope. Handlers translate
// domain errors into echo.HTTPError themselves; structured bodies (conflict
// and partial-failure reports) are attached as the HTTPError message and
// pass through untouched.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var body any = map[string]string{"message": err.Error()}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			body = map[string]string{"message": m}
		default:
			body = m
		}
	}

	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s -> %d: %v", c.Request().Method, c.Request().URL.Path, code, err)
	}

	_ = c.JSON(code, body)
}
