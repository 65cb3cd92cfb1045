package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles event data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new event repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new event and its initial members in one transaction
func (r *Repository) Create(ctx context.Context, name, description string, date time.Time, location string, memberIDs []int64) (*Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (name, description, date, location)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, date, location, created_at
	`

	event := &Event{}
	err = tx.QueryRowContext(ctx, query, name, description, date, location).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	memberQuery := `INSERT INTO event_members (event_id, user_id) VALUES ($1, $2)`
	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, event.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return event, nil
}

// GetByID retrieves an event by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := `
		SELECT id, name, description, date, location, created_at
		FROM events
		WHERE id = $1
	`

	event := &Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// List retrieves all events with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT id, name, description, date, location, created_at
		FROM events
		ORDER BY date
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Date,
			&event.Location,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, total, nil
}

// Update modifies an existing event
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateEventRequest, date *time.Time) (*Event, error) {
	query := `
		UPDATE events
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    date = COALESCE($4, date),
		    location = COALESCE($5, location)
		WHERE id = $1
		RETURNING id, name, description, date, location, created_at
	`

	event := &Event{}
	err := r.db.QueryRowContext(ctx, query, id, req.Name, req.Description, date, req.Location).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// Delete removes an event and its memberships
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetMembers retrieves all members of an event
func (r *Repository) GetMembers(ctx context.Context, eventID int64) ([]*Member, error) {
	query := `
		SELECT em.user_id, u.name, u.email, em.added_at
		FROM event_members em
		JOIN users u ON em.user_id = u.id
		WHERE em.event_id = $1
		ORDER BY em.added_at
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &member.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// HasMember reports whether the user is already a member of the event
func (r *Repository) HasMember(ctx context.Context, eventID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_members WHERE event_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// AddMember adds a user to an event
func (r *Repository) AddMember(ctx context.Context, eventID, userID int64) error {
	query := `INSERT INTO event_members (event_id, user_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from an event
func (r *Repository) RemoveMember(ctx context.Context, eventID, userID int64) (bool, error) {
	query := `DELETE FROM event_members WHERE event_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
