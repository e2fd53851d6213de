// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tosho/internal/platform/middleware"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the reading-progress surface under /progress.
// Everything is per-caller; no cross-user reads exist here.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/books/{bookID}", handler.get)
	router.Post("/books/{bookID}/start", handler.start)
	router.Put("/books/{bookID}", handler.update)
	router.Post("/books/{bookID}/complete", handler.complete)
	router.Delete("/books/{bookID}", handler.reset)

	router.Get("/currently-reading", handler.currentlyReading)
	router.Get("/completed", handler.completed)
	router.Get("/recent", handler.recent)
	router.Get("/stats", handler.stats)
}

type startRequest struct {
	TotalPages *int `json:"total_pages"`
}

type updateRequest struct {
	CurrentPage int    `json:"current_page"`
	TotalPages  *int   `json:"total_pages"`
	Location    string `json:"location"`
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.Get(request.Context(), userID, requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input startRequest
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
	}

	row, err := handler.service.Start(request.Context(), userID, requestutil.ID(request, "bookID"), input.TotalPages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, row)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	row, err := handler.service.Update(request.Context(), userID,
		requestutil.ID(request, "bookID"), input.CurrentPage, input.TotalPages, input.Location)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, row)
}

func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	row, err := handler.service.Complete(request.Context(), userID, requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, row)
}

func (handler *Handler) reset(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Reset(request.Context(), userID, requestutil.ID(request, "bookID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) currentlyReading(writer http.ResponseWriter, request *http.Request) {
	handler.listFor(writer, request, handler.service.CurrentlyReading)
}

func (handler *Handler) completed(writer http.ResponseWriter, request *http.Request) {
	handler.listFor(writer, request, handler.service.Completed)
}

func (handler *Handler) recent(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	list, err := handler.service.RecentlyRead(request.Context(), userID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.Stats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

// listFor shares the per-user listing plumbing.
func (handler *Handler) listFor(
	writer http.ResponseWriter,
	request *http.Request,
	list func(ctx context.Context, userID string) ([]*Progress, error),
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	rows, err := list(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rows)
}
