package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// MessageProxyError is the body message for failures inside the proxy.
const MessageProxyError = "Proxy error"

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	logger *slog.Logger
}

// NewErrorResponder creates a new error responder.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{
		logger: logger,
	}
}

// BadRequest sends a 400 Bad Request response.
// The response body is {"error": "<err>"}.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	message := "Invalid request"
	if err != nil {
		message = err.Error()
	}

	e.logger.Warn("bad request", "error", message)
	e.write(w, http.StatusBadRequest, api.ErrorResponse{Error: message})
}

// BadGateway sends a 502 Bad Gateway response with body {"message": message}.
func (e *errorResponder) BadGateway(w http.ResponseWriter, message string, err error) {
	e.logger.Error("proxy error", "message", message, "error", err)
	e.write(w, http.StatusBadGateway, api.MessageResponse{Message: message})
}

// GatewayTimeout sends a 504 Gateway Timeout response with the given body.
func (e *errorResponder) GatewayTimeout(w http.ResponseWriter, body api.MessageResponse, err error) {
	e.logger.Warn("upstream unreachable", "message", body.Message, "error", err)
	e.write(w, http.StatusGatewayTimeout, body)
}

// InternalError sends a 502 response with body {"message": "Proxy error"}.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	e.BadGateway(w, MessageProxyError, err)
}

// Error maps err onto its boundary status and sends {"message": message}.
func (e *errorResponder) Error(w http.ResponseWriter, message string, err error) {
	switch status := ierrors.StatusFor(err); status {
	case http.StatusGatewayTimeout:
		e.GatewayTimeout(w, api.MessageResponse{Message: message}, err)
	case http.StatusBadRequest:
		e.BadRequest(w, err)
	case http.StatusBadGateway:
		e.BadGateway(w, message, err)
	default:
		e.logger.Warn("request failed", "status", status, "error", err)
		e.write(w, status, api.MessageResponse{Message: message})
	}
}

func (e *errorResponder) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)

	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		e.logger.Error("failed to encode error response", "error", encodeErr)
	}
}
