package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benmalka/gatherly/internal/mail"
)

// Common errors
var (
	ErrEventNotFound       = errors.New("Event not found")
	ErrMemberAlreadyExists = errors.New("Member already exists in the event")
	ErrMemberNotFound      = errors.New("Member does not exist in the event")
	ErrUnknownMemberEmail  = errors.New("No user exists with that email")
)

// UserDirectory resolves member emails to user IDs at the API boundary
type UserDirectory interface {
	FindIDByEmail(ctx context.Context, email string) (int64, bool, error)
}

// Service handles event business logic
type Service struct {
	repo   *Repository
	users  UserDirectory
	sender mail.Sender
}

// NewService creates a new event service
func NewService(repo *Repository, users UserDirectory, sender mail.Sender) *Service {
	return &Service{repo: repo, users: users, sender: sender}
}

// Create validates proposed member emails and creates the event with its
// members in one shot, all-or-nothing.
func (s *Service) Create(ctx context.Context, req *CreateEventRequest, date time.Time) (*Event, error) {
	var existing, nonExisting []string
	var memberIDs []int64
	seen := make(map[int64]bool)

	for _, email := range req.Members {
		id, ok, err := s.users.FindIDByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if !ok {
			nonExisting = append(nonExisting, email)
			continue
		}
		existing = append(existing, email)
		if !seen[id] {
			seen[id] = true
			memberIDs = append(memberIDs, id)
		}
	}

	if len(nonExisting) > 0 {
		return nil, &UnknownMembersError{Existing: existing, NonExisting: nonExisting}
	}

	return s.repo.Create(ctx, req.Name, req.Description, date, req.Location, memberIDs)
}

// UnknownMembersError reports proposed member emails with no account
type UnknownMembersError struct {
	Existing    []string
	NonExisting []string
}

func (e *UnknownMembersError) Error() string {
	return "Some member emails do not exist"
}

// GetByID retrieves an event by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// GetByIDWithMembers retrieves an event along with its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Event, []*Member, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return event, members, nil
}

// List retrieves all events with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing event
func (s *Service) Update(ctx context.Context, id int64, req *UpdateEventRequest, date *time.Time) (*Event, error) {
	event, err := s.repo.Update(ctx, id, req, date)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// Delete removes an event
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEventNotFound
	}
	return nil
}

// AddMemberByEmail resolves the email and adds the user to the event.
// Adding a member who is already present is rejected, not ignored.
func (s *Service) AddMemberByEmail(ctx context.Context, eventID int64, email string) (*Member, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	userID, ok, err := s.users.FindIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownMemberEmail
	}

	present, err := s.repo.HasMember(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, ErrMemberAlreadyExists
	}

	if err := s.repo.AddMember(ctx, eventID, userID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, ErrMemberNotFound
}

// RemoveMember removes a user from the event. Removing an absent member
// is rejected, not treated as a no-op success.
func (s *Service) RemoveMember(ctx context.Context, eventID, userID int64) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}

	removed, err := s.repo.RemoveMember(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

// SendInvitation mails an invitation for the named event. The caller's
// email, when known, is used as the from address. Not retried on failure.
func (s *Service) SendInvitation(ctx context.Context, fromEmail, toEmail, eventName string) error {
	subject := "Invitation to Event"
	body := fmt.Sprintf("You are invited to the event %q.", eventName)
	return s.sender.Send(ctx, fromEmail, toEmail, subject, body)
}
