package handler

import (
	"encoding/json"
	"net/http"

	"event-scheduler-api/internal/middleware"
	"event-scheduler-api/internal/reminder"
	"event-scheduler-api/internal/store"
)

// DateLayout is the wire format for every date field.
const DateLayout = "2006-01-02 15:04:05"

type Handler struct {
	store  *store.Store
	sched  *reminder.Scheduler
	secret string
}

func New(st *store.Store, sched *reminder.Scheduler, secret string) *Handler {
	return &Handler{store: st, sched: sched, secret: secret}
}

// Routes wires every endpoint with its middleware. Register and login are
// rate limited; mutations require a token; reads take an optional one.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", middleware.RateLimit(rl, h.Register))
	mux.HandleFunc("POST /login", middleware.RateLimit(rl, h.Login))
	mux.HandleFunc("POST /password", middleware.Auth(h.secret, h.ChangePassword))
	mux.HandleFunc("POST /events", middleware.Auth(h.secret, h.CreateEvent))
	mux.HandleFunc("GET /events", middleware.OptionalAuth(h.secret, h.ListEvents))
	mux.HandleFunc("GET /events/{id}", middleware.OptionalAuth(h.secret, h.GetEvent))
	mux.HandleFunc("PUT /events/{id}", middleware.Auth(h.secret, h.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", middleware.Auth(h.secret, h.DeleteEvent))
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
