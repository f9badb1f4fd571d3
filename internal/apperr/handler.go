package apperr

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the error response body. Status is "fail" for client faults
// and "error" for server faults; Detail is filled only in dev mode.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

// HTTPErrorHandler returns the centralized Echo error handler. Operational
// errors surface their own status and message. Unknown faults are logged and
// reported as a generic 500; in dev mode the underlying error is included so
// it can be inspected from the client.
func HTTPErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ae *Error
		switch {
		case errors.As(err, &ae):
			// already classified
		default:
			var he *echo.HTTPError
			if errors.As(err, &he) {
				// errors raised by echo itself (routing, binding)
				msg := http.StatusText(he.Code)
				if s, ok := he.Message.(string); ok {
					msg = s
				}
				ae = Wrap(he.Code, msg, he.Internal)
			} else {
				ae = Internal(err)
			}
		}

		if ae.Code >= http.StatusInternalServerError {
			log.Printf("ERROR %s %s: %v", c.Request().Method, c.Request().RequestURI, err)
		}

		body := envelope{Status: ae.Status(), Message: ae.Message}
		if dev && ae.Err != nil {
			body.Detail = ae.Err.Error()
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(ae.Code)
			return
		}
		_ = c.JSON(ae.Code, body)
	}
}
