// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Route guards for the Tosho API.
//
// # Architecture
//
// [Authenticate] (middleware.go) only establishes identity; the guards in this
// file enforce access. Authentication and authorization stay separable so both
// can be exercised in tests without HTTP, and are composed here for router
// ergonomics.
package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/tosho/internal/platform/request"
	"github.com/taibuivan/tosho/internal/platform/respond"
	"github.com/taibuivan/tosho/internal/platform/sec"
)

// PermissionChecker is the decision surface the guards need from the
// authorization service.
//
// # Why an interface?
//
// Defining PermissionChecker here decouples the middleware from the `perm`
// service implementation, allowing us to easily inject fakes during unit testing.
type PermissionChecker interface {
	// HasPermission reports whether the user holds the named permission,
	// via a role or a direct grant. resourceID narrows direct grants and
	// may be empty.
	HasPermission(ctx context.Context, userID, permission, resourceID string) (bool, error)

	// IsAdmin reports whether the user holds the admin.full permission.
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Guard bundles the [PermissionChecker] into reusable chi middleware.
type Guard struct {
	checker PermissionChecker
}

// NewGuard constructs the route guard set.
func NewGuard(checker PermissionChecker) *Guard {
	return &Guard{checker: checker}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermission blocks requests whose user lacks the named permission.
// It implies [RequireAuth].
func (guard *Guard) RequirePermission(permission string) func(http.Handler) http.Handler {
	return guard.require(func(ctx context.Context, userID string) (bool, error) {
		return guard.checker.HasPermission(ctx, userID, permission, "")
	}, "Requires "+permission)
}

// RequireAnyPermission passes when the user holds at least one of the named
// permissions. It implies [RequireAuth].
func (guard *Guard) RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return guard.require(func(ctx context.Context, userID string) (bool, error) {
		for _, permission := range permissions {
			ok, err := guard.checker.HasPermission(ctx, userID, permission, "")
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}, "Insufficient permissions")
}

// RequireAllPermissions passes only when the user holds every named
// permission. It implies [RequireAuth].
func (guard *Guard) RequireAllPermissions(permissions ...string) func(http.Handler) http.Handler {
	return guard.require(func(ctx context.Context, userID string) (bool, error) {
		for _, permission := range permissions {
			ok, err := guard.checker.HasPermission(ctx, userID, permission, "")
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}, "Insufficient permissions")
}

// RequireAdmin passes only for holders of admin.full. It implies [RequireAuth].
func (guard *Guard) RequireAdmin(next http.Handler) http.Handler {
	return guard.require(func(ctx context.Context, userID string) (bool, error) {
		return guard.checker.IsAdmin(ctx, userID)
	}, "Administrator access required")(next)
}

// RequireSelfOrAdmin passes when the URL parameter `id` names the caller, or
// the caller holds admin.full. It implies [RequireAuth].
func (guard *Guard) RequireSelfOrAdmin(paramName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			claims := GetUser(req.Context())
			if claims == nil {
				respond.Error(writer, req, apperr.Unauthorized("Authentication required"))
				return
			}

			if requestutil.Param(req, paramName) == claims.UserID {
				next.ServeHTTP(writer, req)
				return
			}

			isAdmin, err := guard.checker.IsAdmin(req.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, req, err)
				return
			}
			if !isAdmin {
				respond.Error(writer, req, apperr.Forbidden("Administrator access required"))
				return
			}

			next.ServeHTTP(writer, req)
		})
	}
}

// require builds a guard middleware from a decision function.
func (guard *Guard) require(decide func(ctx context.Context, userID string) (bool, error), denyMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			claims := GetUser(req.Context())
			if claims == nil {
				respond.Error(writer, req, apperr.Unauthorized("Authentication required"))
				return
			}

			allowed, err := decide(req.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, req, err)
				return
			}
			if !allowed {
				respond.Error(writer, req, apperr.Forbidden(denyMessage))
				return
			}

			next.ServeHTTP(writer, req)
		})
	}
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}
