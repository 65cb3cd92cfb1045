package group

// CreateGroupRequest represents the request to create a new group.
// Members are given as emails and resolved to user IDs before anything
// is written; one unknown email rejects the whole request.
type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members,omitempty"`
}

// UpdateGroupRequest represents the request to rename a group
type UpdateGroupRequest struct {
	Name *string `json:"name,omitempty"`
}

// AddMemberRequest represents the request to add a member by email
type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	Members   []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	AddedAt string `json:"added_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z"),
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
