package group

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("Group not found")
	ErrMemberAlreadyExists = errors.New("Member already exists in the group")
	ErrMemberNotFound      = errors.New("Member does not exist in the group")
	ErrUnknownMemberEmail  = errors.New("No user exists with that email")
)

// UnknownMembersError reports the partition of a batch member validation:
// which proposed emails resolved to users and which did not. Any
// non-existing email rejects the whole request.
type UnknownMembersError struct {
	Existing    []string
	NonExisting []string
}

func (e *UnknownMembersError) Error() string {
	return "Some member emails do not exist"
}

// UserDirectory resolves member emails to user IDs at the API boundary;
// storage only ever sees IDs.
type UserDirectory interface {
	FindIDByEmail(ctx context.Context, email string) (int64, bool, error)
}

// Service handles group business logic
type Service struct {
	repo  *Repository
	users UserDirectory
}

// NewService creates a new group service
func NewService(repo *Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// Create validates every proposed member email and creates the group with
// its members in one shot. All-or-nothing: unknown emails fail the whole
// request with the existing/non-existing partition, and nothing is written.
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
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

	return s.repo.Create(ctx, req.Name, memberIDs)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group along with its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// List retrieves all groups with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update renames an existing group
func (s *Service) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGroupNotFound
	}
	return nil
}

// AddMemberByEmail resolves the email and adds the user to the group.
// Adding a member who is already present is rejected, not ignored.
func (s *Service) AddMemberByEmail(ctx context.Context, groupID int64, email string) (*Member, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	userID, ok, err := s.users.FindIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownMemberEmail
	}

	present, err := s.repo.HasMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, ErrMemberAlreadyExists
	}

	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, groupID)
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

// RemoveMember removes a user from the group. Removing an absent member
// is rejected, not treated as a no-op success.
func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	removed, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}
