package store

import (
	"context"
	"errors"
	"fmt"

	"event-scheduler-api/internal/model"
)

// SortKey is the closed set of orderings the event listing accepts.
type SortKey string

const (
	SortNone         SortKey = ""
	SortDate         SortKey = "date"
	SortPopularity   SortKey = "popularity"
	SortCreationTime SortKey = "creation_time"
)

// ErrBadSortKey carries the exact message the API returns on a bad sort_by.
var ErrBadSortKey = errors.New("Invalid value for sort_by. Must be one of 'date', 'popularity', 'creation_time'.")

var orderBy = map[SortKey]string{
	SortNone:         ` ORDER BY created_at`,
	SortDate:         ` ORDER BY event_date`,
	SortPopularity:   ` ORDER BY participants DESC`,
	SortCreationTime: ` ORDER BY created_at`,
}

func ParseSortKey(raw string) (SortKey, error) {
	k := SortKey(raw)
	if _, ok := orderBy[k]; !ok {
		return SortNone, ErrBadSortKey
	}
	return k, nil
}

// Filter narrows a listing; empty fields match everything. Matching is
// exact equality on both fields together, not substring.
type Filter struct {
	Location string
	Venue    string
}

const eventCols = `id, title, description, venue, location, event_date, tags, participants, created_at`

func (s *Store) CreateEvent(ctx context.Context, e *model.Event, ownerIDs ...string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO events (id,title,description,venue,location,event_date,tags,participants)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		e.ID, e.Title, e.Description, e.Venue, e.Location, e.EventDate, e.Tags, e.Participants,
	).Scan(&e.CreatedAt)
	if err != nil {
		return mapErr(err)
	}

	for _, uid := range ownerIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO event_owners (event_id, user_id) VALUES ($1,$2)`,
			e.ID, uid,
		)
		if err != nil {
			return mapErr(err)
		}
	}
	e.OwnerIDs = ownerIDs

	return tx.Commit(ctx)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e := &model.Event{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+eventCols+` FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.Location,
		&e.EventDate, &e.Tags, &e.Participants, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM event_owners WHERE event_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		e.OwnerIDs = append(e.OwnerIDs, uid)
	}
	return e, rows.Err()
}

func (s *Store) ListEvents(ctx context.Context, f Filter, sort SortKey) ([]model.Event, error) {
	q := `SELECT ` + eventCols + ` FROM events`
	var args []any
	var where []string

	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}
	if f.Venue != "" {
		args = append(args, f.Venue)
		where = append(where, fmt.Sprintf("venue = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			q += ` WHERE ` + cond
		} else {
			q += ` AND ` + cond
		}
	}
	q += orderBy[sort]

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Venue, &e.Location,
			&e.EventDate, &e.Tags, &e.Participants, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEvent(ctx context.Context, e *model.Event) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE events
		 SET title=$1, description=$2, venue=$3, location=$4, event_date=$5, tags=$6, participants=$7
		 WHERE id=$8`,
		e.Title, e.Description, e.Venue, e.Location, e.EventDate, e.Tags, e.Participants, e.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event and its owner rows in one transaction, so
// the event disappears from every owner's set along with the record itself.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM event_owners WHERE event_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) IsOwner(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_owners WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, err
}

// PendingReminder pairs a future event with an owner's contact address, for
// re-arming reminders after a restart.
type PendingReminder struct {
	Event model.Event
	Email string
}

func (s *Store) UpcomingReminders(ctx context.Context) ([]PendingReminder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.title, e.description, e.venue, e.location,
		        e.event_date, e.tags, e.participants, e.created_at, u.email
		 FROM events e
		 JOIN event_owners o ON o.event_id = e.id
		 JOIN users u ON u.id = o.user_id
		 WHERE e.event_date > NOW()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingReminder
	for rows.Next() {
		var p PendingReminder
		if err := rows.Scan(
			&p.Event.ID, &p.Event.Title, &p.Event.Description, &p.Event.Venue, &p.Event.Location,
			&p.Event.EventDate, &p.Event.Tags, &p.Event.Participants, &p.Event.CreatedAt, &p.Email,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
