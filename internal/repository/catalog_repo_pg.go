package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository is read-only: catalog management belongs to the admin
// layer, the booking core only prices against it.
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]domain.ServicePackage, error)
	GetService(ctx context.Context, id string) (*domain.ServicePackage, error)
	GetAddons(ctx context.Context, ids []string) ([]domain.Addon, error)
}

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

func (r *PGCatalogRepository) ListServices(ctx context.Context) ([]domain.ServicePackage, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price FROM service_packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.ServicePackage
	for rows.Next() {
		var s domain.ServicePackage
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *PGCatalogRepository) GetService(ctx context.Context, id string) (*domain.ServicePackage, error) {
	var s domain.ServicePackage
	err := r.db.QueryRow(ctx, `SELECT id, name, price FROM service_packages WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGCatalogRepository) GetAddons(ctx context.Context, ids []string) ([]domain.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, price FROM addons WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addons []domain.Addon
	for rows.Next() {
		var a domain.Addon
		if err := rows.Scan(&a.ID, &a.Name, &a.Price); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
