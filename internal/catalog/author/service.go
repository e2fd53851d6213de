// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// EnsureByName returns the named author, creating the row if needed.
func (service *Service) EnsureByName(ctx context.Context, name string) (*Author, error) {
	return service.repo.EnsureByName(ctx, name)
}

// Enrich fills empty optional author fields from provider output.
func (service *Service) Enrich(ctx context.Context, authorID string, enrichment Enrichment) error {
	return service.repo.Enrich(ctx, authorID, enrichment)
}

// Get returns one author.
func (service *Service) Get(ctx context.Context, id string) (*Author, error) {
	return service.repo.FindByID(ctx, id)
}

// ListWithCounts returns the author rollup for a caller's permission set.
func (service *Service) ListWithCounts(ctx context.Context, allowedPermissions []string) ([]*Author, error) {
	return service.repo.ListWithCounts(ctx, allowedPermissions)
}
