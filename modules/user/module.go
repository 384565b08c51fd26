// Package user provides the assignee directory the admin console offers in
// its filter and form dropdowns.
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UserModule provides member directory services.
type UserModule struct {
	directory *Directory
}

var _ mono.Module = (*UserModule)(nil)
var _ mono.ServiceProviderModule = (*UserModule)(nil)

// NewModule creates a new UserModule.
func NewModule() *UserModule {
	return &UserModule{
		directory: NewDirectory(),
	}
}

// Name returns the module name.
func (m *UserModule) Name() string {
	return "user"
}

// RegisterServices registers the directory request-reply services.
func (m *UserModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-members", json.Unmarshal, json.Marshal, m.listMembers,
	); err != nil {
		return fmt.Errorf("failed to register list-members service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-member", json.Unmarshal, json.Marshal, m.getMember,
	); err != nil {
		return fmt.Errorf("failed to register get-member service: %w", err)
	}

	log.Printf("[user] Registered services: list-members, get-member")
	return nil
}

// listMembers handles the list-members service request.
func (m *UserModule) listMembers(_ context.Context, _ ListMembersRequest, _ *mono.Msg) (ListMembersResponse, error) {
	members := m.directory.All()
	return ListMembersResponse{Members: members, Total: len(members)}, nil
}

// getMember handles the get-member service request.
func (m *UserModule) getMember(_ context.Context, req GetMemberRequest, _ *mono.Msg) (GetMemberResponse, error) {
	member, found := m.directory.FindByName(req.Name)
	if !found {
		return GetMemberResponse{Found: false}, nil
	}
	return GetMemberResponse{Member: member, Found: true}, nil
}

// Start seeds the demo team.
func (m *UserModule) Start(_ context.Context) error {
	m.directory.SeedTeam()
	log.Println("[user] Module started with demo team")
	return nil
}

// Stop shuts down the module.
func (m *UserModule) Stop(_ context.Context) error {
	log.Println("[user] Module stopped")
	return nil
}
