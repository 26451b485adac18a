package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"event-scheduler-api/internal/middleware"
	"event-scheduler-api/internal/model"
	"event-scheduler-api/internal/store"
)

type eventResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Venue        string   `json:"venue"`
	Location     string   `json:"location"`
	EventDate    string   `json:"event_date"`
	Tags         []string `json:"tags"`
	Participants int      `json:"participants"`
}

// toResponse omits the owner set.
func toResponse(e *model.Event) eventResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return eventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Venue:        e.Venue,
		Location:     e.Location,
		EventDate:    e.EventDate.Format(DateLayout),
		Tags:         tags,
		Participants: e.Participants,
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())

	var req struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Venue        string   `json:"venue"`
		Location     string   `json:"location"`
		EventDate    string   `json:"event_date"`
		Tags         []string `json:"tags"`
		Participants *int     `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(DateLayout, req.EventDate)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "event_date must be formatted as YYYY-MM-DD HH:MM:SS")
		return
	}

	participants := 1
	if req.Participants != nil {
		participants = *req.Participants
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	e := &model.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Venue:        req.Venue,
		Location:     req.Location,
		EventDate:    date,
		Tags:         tags,
		Participants: participants,
	}
	if err := e.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if !e.EventDate.After(time.Now()) {
		writeMessage(w, http.StatusBadRequest, "Event date must be in the future.")
		return
	}

	if err := h.store.CreateEvent(r.Context(), e, uid); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeMessage(w, http.StatusConflict, "Event title already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	// reminder for the creator; delivery itself is the notifier's business
	if u, err := h.store.UserByID(r.Context(), uid); err == nil {
		h.sched.Schedule(e, u.Email)
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Event scheduled successfully",
		"id":      e.ID,
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort, err := store.ParseSortKey(q.Get("sort_by"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	f := store.Filter{
		Location: q.Get("location"),
		Venue:    q.Get("venue"),
	}

	events, err := h.store.ListEvents(r.Context(), f, sort)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]eventResponse, len(events))
	for i := range events {
		out[i] = toResponse(&events[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())

	e, err := h.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}
	if !slices.Contains(e.OwnerIDs, uid) {
		writeMessage(w, http.StatusForbidden, "you are not an owner of this event")
		return
	}

	// partial update: omitted fields keep their previous values
	var req struct {
		Title        *string  `json:"title"`
		Description  *string  `json:"description"`
		Venue        *string  `json:"venue"`
		Location     *string  `json:"location"`
		EventDate    *string  `json:"event_date"`
		Tags         []string `json:"tags"`
		Participants *int     `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Venue != nil {
		e.Venue = *req.Venue
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Tags != nil {
		e.Tags = req.Tags
	}
	if req.Participants != nil {
		e.Participants = *req.Participants
	}
	dateChanged := false
	if req.EventDate != nil {
		date, err := time.Parse(DateLayout, *req.EventDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "event_date must be formatted as YYYY-MM-DD HH:MM:SS")
			return
		}
		dateChanged = !date.Equal(e.EventDate)
		// no future check here: the date is validated against the clock at
		// creation only
		e.EventDate = date
	}

	if err := e.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateEvent(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			writeMessage(w, http.StatusConflict, "Event title already exists")
		case errors.Is(err, store.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Event not found")
		default:
			writeMessage(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if dateChanged {
		if u, err := h.store.UserByID(r.Context(), uid); err == nil {
			h.sched.Schedule(e, u.Email)
		}
	}

	writeMessage(w, http.StatusOK, "Event updated successfully")
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())
	id := r.PathValue("id")

	e, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}
	if !slices.Contains(e.OwnerIDs, uid) {
		writeMessage(w, http.StatusForbidden, "you are not an owner of this event")
		return
	}

	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Event not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	// a pending reminder must not fire for a deleted event
	h.sched.Cancel(id)

	writeMessage(w, http.StatusOK, "Event deleted successfully")
}
