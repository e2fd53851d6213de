// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive

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

// RegisterRoutes mounts the archive surface under /archive.
//
// Listing requires books.read (the explicit archive surface); lifecycle
// mutations require books.manage.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(handler.guard.RequirePermission(perm.PermBooksRead)).Get("/", handler.list)
	router.With(handler.guard.RequirePermission(perm.PermBooksRead)).Get("/stats", handler.stats)

	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequirePermission(perm.PermBooksManage))
		r.Post("/{bookID}", handler.archive)
		r.Delete("/{bookID}", handler.restore)
		r.Post("/validate", handler.validateArchive)
	})
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	archived, total, err := handler.service.ListArchived(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, archived, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) archive(writer http.ResponseWriter, request *http.Request) {
	var input archiveRequest
	// Body is optional; a bare POST archives with the default reason.
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
	}

	if err := handler.service.Archive(request.Context(), requestutil.ID(request, "bookID"), input.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) restore(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Restore(request.Context(), requestutil.ID(request, "bookID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) validateArchive(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Validate(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
