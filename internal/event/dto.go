package event

import "time"

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date" validate:"required"`
	Location    string   `json:"location,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// Validate checks required fields and parses the date
func (r *CreateEventRequest) Validate() (time.Time, []string) {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	var date time.Time
	if r.Date == "" {
		errs = append(errs, "date is required")
	} else {
		var err error
		date, err = time.Parse(time.RFC3339, r.Date)
		if err != nil {
			errs = append(errs, "date must be RFC 3339")
		}
	}
	return date, errs
}

// UpdateEventRequest represents the request to update an event.
// Nil fields are left unchanged.
type UpdateEventRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// Validate parses the optional date field
func (r *UpdateEventRequest) Validate() (*time.Time, []string) {
	if r.Date == nil {
		return nil, nil
	}
	date, err := time.Parse(time.RFC3339, *r.Date)
	if err != nil {
		return nil, []string{"date must be RFC 3339"}
	}
	return &date, nil
}

// AddMemberRequest represents the request to add a member by email
type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendInvitationRequest represents the request to mail an event invitation
type SendInvitationRequest struct {
	ToEmail   string `json:"toEmail" validate:"required,email"`
	EventName string `json:"eventName" validate:"required"`
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Date        string            `json:"date"`
	Location    string            `json:"location,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in an event response
type MemberResponse struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	AddedAt string `json:"added_at"`
}

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date.Format(time.RFC3339),
		Location:    e.Location,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:  m.UserID,
		Name:    m.Name,
		Email:   m.Email,
		AddedAt: m.AddedAt.Format("2006-01-02T15:04:05Z"),
	}
}
