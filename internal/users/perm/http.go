// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tosho/internal/platform/middleware"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/platform/validate"
)

// Handler implements the admin role/permission endpoints.
type Handler struct {
	service *Service
	guard   *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// RegisterRoutes mounts the role and permission management surface.
//
// All routes require admin.full.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequireAdmin)

		r.Get("/roles", handler.listRoles)
		r.Post("/roles", handler.createRole)
		r.Put("/roles/{id}", handler.updateRole)
		r.Delete("/roles/{id}", handler.deleteRole)

		r.Get("/permissions", handler.listPermissions)

		r.Post("/users/{id}/roles/{role}", handler.assignRole)
		r.Delete("/users/{id}/roles/{role}", handler.removeRole)
	})
}

// # Payloads

type roleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.service.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input roleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 64)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.CreateRole(request.Context(), input.Name, input.Description, input.Permissions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, role)
}

func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	var input roleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	role := &Role{
		ID:          requestutil.ID(request, "id"),
		Description: input.Description,
		Permissions: input.Permissions,
	}

	if err := handler.service.UpdateRole(request.Context(), role); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteRole(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.service.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permissions)
}

func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.AssignRoleByName(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.Param(request, "role"),
		claims.UserID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.RemoveRoleByName(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.Param(request, "role"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
