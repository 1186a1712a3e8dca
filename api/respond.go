package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/linkme-io/linkme-backend/errs"
)

type responderConfig struct {
	// exposeInternal keeps 5xx details in responses; development only.
	exposeInternal bool
	webhookURL     string
}

type Responder struct {
	logger zerolog.Logger
	cfg    responderConfig
	client *http.Client
}

func NewResponder(logger zerolog.Logger, cfg responderConfig) Responder {
	return Responder{logger: logger, cfg: cfg, client: &http.Client{Timeout: 5 * time.Second}}
}

// envelope is the body of every successful response
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteData writes data inside the success envelope.
func (r Responder) WriteData(w http.ResponseWriter, status int, data any) {
	r.WriteJSON(w, status, envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope carrying a message and optional data.
func (r Responder) WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	r.WriteJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")

		truncatedJSON, _ := json.Marshal(map[string]any{
			"success": false,
			"error":   "Response too large",
			"message": "The requested data exceeds the maximum response size",
		})
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write(truncatedJSON)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// SendErrorNotification posts an unexpected error to the configured webhook.
// It does nothing when no webhook is set.
func (r Responder) SendErrorNotification(errMsg string) {
	if r.cfg.webhookURL == "" {
		return
	}
	go func() {
		jsonData, err := json.Marshal(map[string]string{"errorMessage": errMsg})
		if err != nil {
			r.logger.Error().Err(err).Msg("Error marshaling error notification request")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.webhookURL, bytes.NewReader(jsonData))
		if err != nil {
			r.logger.Error().Err(err).Msg("Error building error notification request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := r.client.Do(req)
		if err != nil {
			r.logger.Error().Err(err).Msg("Error sending error notification")
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			r.logger.Error().Msgf("Error notification webhook returned status: %d", resp.StatusCode)
		}
	}()
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.SendErrorNotification(err.Error())
		response := map[string]any{
			"success": false,
			"error":   "Internal Server Error",
			"message": "An unexpected error occurred",
		}
		if r.cfg.exposeInternal {
			response["details"] = err.Error()
		}
		r.WriteJSON(w, http.StatusInternalServerError, response)
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
		r.SendErrorNotification(apiErr.GetFullError())
		if !r.cfg.exposeInternal {
			r.WriteJSON(w, apiErr.StatusCode, map[string]any{
				"success": false,
				"error":   http.StatusText(apiErr.StatusCode),
				"message": "An unexpected error occurred",
			})
			return
		}
	}

	response := map[string]any{
		"success": false,
		"error":   apiErr.Error(),
		"message": apiErr.UserMessage(),
	}
	for k, v := range apiErr.Extra {
		response[k] = v
	}
	if apiErr.Field != "" {
		response["field"] = apiErr.Field
	}
	if apiErr.Details != "" {
		response["details"] = apiErr.Details
	}
	if apiErr.Cause != nil && r.cfg.exposeInternal {
		response["cause"] = apiErr.GetFullError()
	}

	r.WriteJSON(w, apiErr.StatusCode, response)
}
