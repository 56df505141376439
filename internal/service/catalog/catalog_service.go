package catalog

import (
	"context"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/Domenick1991/studiobooking/internal/repository"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]domain.ServicePackage, error)
}

type Cache interface {
	GetServices(ctx context.Context) ([]domain.ServicePackage, error)
	SetServices(ctx context.Context, services []domain.ServicePackage) error
}

type CatalogService struct {
	repo  repository.CatalogRepository
	cache Cache
}

func NewCatalogService(repo repository.CatalogRepository, cache Cache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.ServicePackage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetServices(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetServices(ctx, services)
	}
	return services, nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
