package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

// Service exposes the read-only catalog surface.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params) (pagination.Page[models.Product], error)
}

type catalogReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context, params pagination.Params) ([]models.Product, int64, error)
}

type service struct {
	repo catalogReader
}

// NewService wires the catalog read service.
func NewService(repo catalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (pagination.Page[models.Product], error) {
	params = params.Normalize()
	items, total, err := s.repo.ListActive(ctx, params)
	if err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.NewPage(items, total, params), nil
}
