package user

// Member represents a team member selectable as a task assignee.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetMemberRequest is the request for the get-member service.
type GetMemberRequest struct {
	Name string `json:"name"`
}

// GetMemberResponse is the response for the get-member service.
type GetMemberResponse struct {
	Member *Member `json:"member,omitempty"`
	Found  bool    `json:"found"`
}

// ListMembersRequest is the request for the list-members service.
type ListMembersRequest struct{}

// ListMembersResponse is the response for the list-members service.
type ListMembersResponse struct {
	Members []Member `json:"members"`
	Total   int      `json:"total"`
}
