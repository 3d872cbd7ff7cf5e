package broadcast

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/shopbot/core/logger"
	"log/slog"
)

type broadcastRequest struct {
	Message string `json:"message"`
}

type broadcastResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// NewRouter exposes the admin broadcast endpoint.
func NewRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Post("/api/broadcast", handleBroadcast(svc))
	return r
}

func handleBroadcast(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in broadcastRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, broadcastResponse{
				Status: "error", Message: "invalid JSON body",
			})
			return
		}
		in.Message = strings.TrimSpace(in.Message)
		if in.Message == "" {
			writeJSON(w, http.StatusBadRequest, broadcastResponse{
				Status: "error", Message: "message must not be empty",
			})
			return
		}

		res, err := svc.Send(req.Context(), in.Message)
		if err != nil {
			logger.API.Error("broadcast failed",
				slog.String("event", "api.broadcast"),
				slog.String("err", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, broadcastResponse{
				Status: "error", Message: "broadcast failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, broadcastResponse{
			Status:  "ok",
			Message: "broadcast delivered",
			Errors:  res.Errors,
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, body broadcastResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.API.Error("response encode failed",
			slog.String("event", "api.broadcast"),
			slog.String("err", err.Error()),
		)
	}
}
