package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UserPort defines the directory operations other modules use.
type UserPort interface {
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, name string) (*Member, error)
}

// userAdapter wraps ServiceContainer for type-safe cross-module calls.
type userAdapter struct {
	container mono.ServiceContainer
}

// NewUserAdapter creates a new adapter for the directory services.
func NewUserAdapter(container mono.ServiceContainer) UserPort {
	if container == nil {
		panic("user adapter requires non-nil ServiceContainer")
	}
	return &userAdapter{container: container}
}

// ListMembers returns every member via the list-members service.
func (a *userAdapter) ListMembers(ctx context.Context) ([]Member, error) {
	var resp ListMembersResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-members", json.Marshal, json.Unmarshal, &ListMembersRequest{}, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-members service call failed: %w", err)
	}
	return resp.Members, nil
}

// GetMember looks up a member by name via the get-member service.
func (a *userAdapter) GetMember(ctx context.Context, name string) (*Member, error) {
	req := GetMemberRequest{Name: name}
	var resp GetMemberResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-member", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-member service call failed: %w", err)
	}
	if !resp.Found {
		return nil, fmt.Errorf("member not found: %s", name)
	}
	return resp.Member, nil
}
