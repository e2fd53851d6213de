// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/platform/middleware"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/users/perm"
)

type Handler struct {
	service *Service
	guard   *middleware.Guard
}

func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// RegisterRoutes mounts the tag catalog surface under /tags.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listTags)
	router.Get("/{id}", handler.getTag)
	router.Get("/category/{category}", handler.listByCategory)

	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequirePermission(perm.PermBooksWrite))
		r.Put("/books/{bookID}/{name}", handler.attach)
		r.Delete("/books/{bookID}/{name}", handler.detach)
	})
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := strconv.Atoi(requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Tag id must be an integer"))
		return
	}

	found, err := handler.service.Get(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) listByCategory(writer http.ResponseWriter, request *http.Request) {
	category := Category(requestutil.Param(request, "category"))

	tags, err := handler.service.ListByCategory(request.Context(), category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) attach(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.Attach(request.Context(),
		requestutil.ID(request, "bookID"),
		requestutil.Param(request, "name"),
		claims.UserID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) detach(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.Detach(request.Context(),
		requestutil.ID(request, "bookID"),
		requestutil.Param(request, "name"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
