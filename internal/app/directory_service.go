package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incident-training-service/internal/domain"
)

// DirectoryService manages the users and roles responses are attributed to.
type DirectoryService struct {
	store DirectoryStore
	newID func() string
}

func NewDirectoryService(store DirectoryStore) *DirectoryService {
	return &DirectoryService{store: store, newID: uuid.NewString}
}

func (s *DirectoryService) CreateRole(ctx context.Context, name string, clearance domain.ClearanceLevel) (domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, fmt.Errorf("%w: role name is required", domain.ErrInvalidRequest)
	}
	role := domain.Role{ID: s.newID(), Name: name, Clearance: clearance}
	if err := s.store.SaveRole(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

// CreateUser registers a user; a non-empty roleID must name an existing role.
func (s *DirectoryService) CreateUser(ctx context.Context, username, email, roleID string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}
	if roleID != "" {
		if err := s.requireRole(ctx, roleID); err != nil {
			return domain.User{}, err
		}
	}
	user := domain.User{ID: s.newID(), Username: username, Email: strings.TrimSpace(email), RoleID: roleID}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *DirectoryService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *DirectoryService) requireRole(ctx context.Context, roleID string) error {
	return requireRole(ctx, s.store, roleID)
}

func requireRole(ctx context.Context, store DirectoryStore, roleID string) error {
	roles, err := store.ListRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return nil
		}
	}
	return domain.ErrRoleNotFound
}
