package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"event-scheduler-api/internal/auth"
	"event-scheduler-api/internal/middleware"
	"event-scheduler-api/internal/model"
	"event-scheduler-api/internal/store"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password required")
		return
	}
	if len(req.Password) < 8 {
		writeMessage(w, http.StatusBadRequest, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeMessage(w, http.StatusConflict, "Email already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeMessage(w, http.StatusOK, "registered successfully")
}

// Login authenticates via the basic-auth header and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok || email == "" || password == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="login"`)
		writeMessage(w, http.StatusUnauthorized, "login required")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, password) {
		writeMessage(w, http.StatusUnauthorized, "could not verify")
		return
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		writeMessage(w, http.StatusBadRequest, "password too short")
		return
	}

	u, err := h.store.UserByID(r.Context(), uid)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		writeMessage(w, http.StatusUnauthorized, "could not verify")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.store.UpdatePassword(r.Context(), uid, hash); err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeMessage(w, http.StatusOK, "password updated successfully")
}
