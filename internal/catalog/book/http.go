// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tosho/internal/catalog/author"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/platform/middleware"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/users/perm"
	"github.com/taibuivan/tosho/pkg/pagination"
	"github.com/taibuivan/tosho/pkg/query"
)

// Handler implements the catalog read surface: books, authors, genres.
type Handler struct {
	service *Service
	authors *author.Service
	filter  *access.Service
	guard   *middleware.Guard
}

func NewHandler(service *Service, authors *author.Service, filter *access.Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, authors: authors, filter: filter, guard: guard}
}

// RegisterRoutes mounts the catalog surface. Book and author routes require
// authentication plus books.read; genre routes require genres.read.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequirePermission(perm.PermBooksRead))

		r.Get("/books", handler.listBooks)
		r.Get("/books/{id}", handler.getBook)
		r.Get("/books/{id}/stream", handler.streamBook)

		r.Get("/authors", handler.listAuthors)
		r.Get("/authors/{id}", handler.getAuthor)
	})

	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequirePermission(perm.PermGenresRead))

		r.Get("/genres", handler.listGenres)
		r.Get("/genres/{id}", handler.getGenre)
	})
}

/*
listBooks returns the caller's visible slice of the catalog.

GET /api/v1/books?tags=EPUB,Fiction&exclude_tags=Horror&format=epub&q=...

Tag filters are tag names; genres are tags, so genre filtering uses the same
parameters.
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	values := request.URL.Query()

	filter := Filter{
		IncludeTags: query.StringSlice(values.Get("tags")),
		ExcludeTags: query.StringSlice(values.Get("exclude_tags")),
		AuthorID:    values.Get("author"),
		Format:      values.Get("format"),
		Search:      values.Get("q"),
		Limit:       params.Limit,
		Offset:      params.Offset(),
	}

	books, total, err := handler.service.List(request.Context(), userID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.Get(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

/*
streamBook serves the raw file bytes with the format's content type.

http.ServeFile handles range requests, so readers can seek inside large
files without re-downloading.
*/
func (handler *Handler) streamBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	info, err := handler.service.Stream(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", info.ContentType)
	writer.Header().Set("Content-Disposition", `inline; filename="`+info.Filename+`"`)
	http.ServeFile(writer, request, info.Filepath)
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	allowed, err := handler.filter.AllowedPermissions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	authors, err := handler.authors.ListWithCounts(request.Context(), allowed)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, authors)
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.authors.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Attach the caller's visible books for the rollup view.
	books, _, err := handler.service.List(request.Context(), userID, Filter{
		AuthorID: found.ID,
		Limit:    100,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"author": found,
		"books":  books,
	})
}

func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	genres, err := handler.service.Genres(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, genres)
}

func (handler *Handler) getGenre(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tagID, err := strconv.Atoi(requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Genre id must be an integer"))
		return
	}

	detail, err := handler.service.GenreDetailByID(request.Context(), userID, tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}
