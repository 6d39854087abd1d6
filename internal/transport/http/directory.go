package http

import (
	"net/http"

	"incident-training-service/internal/domain"
)

type createRoleRequest struct {
	Name      string                `json:"name"`
	Clearance domain.ClearanceLevel `json:"clearance"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   string `json:"roleId"`
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !decode(w, r, &req) {
		return
	}
	role, err := s.svc.Directory.CreateRole(r.Context(), req.Name, req.Clearance)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, role)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.svc.Directory.ListRoles(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, roles)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := s.svc.Directory.CreateUser(r.Context(), req.Username, req.Email, req.RoleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Directory.ListUsers(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, users)
}
