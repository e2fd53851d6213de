// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"
)

// RoleReader is the slice of the authorization service this package needs.
type RoleReader interface {
	RoleNames(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	repo   Repository
	roles  RoleReader
	logger *slog.Logger
}

func NewService(repo Repository, roles RoleReader, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roles, logger: logger}
}

// List returns a page of accounts with their role names hydrated.
func (service *Service) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	accounts, total, err := service.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, account := range accounts {
		account.Roles, _ = service.roles.RoleNames(ctx, account.ID)
	}

	return accounts, total, nil
}

// Get returns one account with roles.
func (service *Service) Get(ctx context.Context, id string) (*Account, error) {
	account, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Roles, err = service.roles.RoleNames(ctx, id)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// UpdateProfile changes the account's display name.
func (service *Service) UpdateProfile(ctx context.Context, id, displayName string) (*Account, error) {
	return service.repo.UpdateProfile(ctx, id, displayName)
}

// Deactivate soft-disables an account; sign-in is refused afterwards but
// progress history is preserved.
func (service *Service) Deactivate(ctx context.Context, id string) error {
	if err := service.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	service.logger.Info("account_deactivated", slog.String("user_id", id))
	return nil
}

// Dashboard returns the operator aggregates.
func (service *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return service.repo.Dashboard(ctx)
}
