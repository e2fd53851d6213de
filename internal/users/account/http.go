// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tosho/internal/platform/middleware"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/platform/validate"
	"github.com/taibuivan/tosho/internal/users/perm"
	"github.com/taibuivan/tosho/pkg/pagination"
)

type Handler struct {
	service *Service
	guard   *middleware.Guard
}

func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// RegisterRoutes mounts the user-administration surface.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(handler.guard.RequirePermission(perm.PermUsersRead)).Get("/users", handler.list)
	router.With(handler.guard.RequireSelfOrAdmin("id")).Get("/users/{id}", handler.get)
	router.With(handler.guard.RequireSelfOrAdmin("id")).Put("/users/{id}", handler.update)
	router.With(handler.guard.RequirePermission(perm.PermUsersManage)).Delete("/users/{id}", handler.deactivate)
	router.With(handler.guard.RequireAdmin).Get("/dashboard", handler.dashboard)
}

type updateRequest struct {
	DisplayName string `json:"display_name"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	account, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("display_name", input.DisplayName).MaxLen("display_name", input.DisplayName, 120)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.UpdateProfile(request.Context(), requestutil.ID(request, "id"), input.DisplayName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Deactivate(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	dashboard, err := handler.service.Dashboard(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, dashboard)
}
