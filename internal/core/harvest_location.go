package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HarvestLocation is a regulatory harvest-area code printed on invoices and shipping tags.
type HarvestLocation struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type HarvestLocationInput struct {
	Code     string `json:"code" validate:"required,max=40"`
	Name     string `json:"name" validate:"required,max=120"`
	IsActive *bool  `json:"is_active"`
}

type HarvestLocationService interface {
	ListHarvestLocations(ctx context.Context, includeInactive bool) ([]HarvestLocation, error)
	CreateHarvestLocation(ctx context.Context, in HarvestLocationInput) (*HarvestLocation, error)
	UpdateHarvestLocation(ctx context.Context, id int, in HarvestLocationInput) (*HarvestLocation, error)
	DeactivateHarvestLocation(ctx context.Context, id int) error
}

type harvestLocationService struct {
	pool *pgxpool.Pool
}

func NewHarvestLocationService(pool *pgxpool.Pool) HarvestLocationService {
	return &harvestLocationService{pool: pool}
}

func scanHarvestLocation(row pgx.Row) (*HarvestLocation, error) {
	var h HarvestLocation
	if err := row.Scan(&h.ID, &h.Code, &h.Name, &h.IsActive, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *harvestLocationService) ListHarvestLocations(ctx context.Context, includeInactive bool) ([]HarvestLocation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, is_active, created_at
		FROM harvest_locations
		WHERE is_active OR $1
		ORDER BY code
	`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query harvest locations: %w", err)
	}
	defer rows.Close()

	locations := []HarvestLocation{}
	for rows.Next() {
		h, err := scanHarvestLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan harvest location: %w", err)
		}
		locations = append(locations, *h)
	}
	return locations, rows.Err()
}

func (s *harvestLocationService) CreateHarvestLocation(ctx context.Context, in HarvestLocationInput) (*HarvestLocation, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	active := in.IsActive == nil || *in.IsActive

	h, err := scanHarvestLocation(s.pool.QueryRow(ctx, `
		INSERT INTO harvest_locations (code, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, code, name, is_active, created_at
	`, strings.TrimSpace(in.Code), strings.TrimSpace(in.Name), active))
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("harvest location %q already exists", in.Code)
		}
		return nil, fmt.Errorf("failed to create harvest location: %w", err)
	}
	return h, nil
}

func (s *harvestLocationService) UpdateHarvestLocation(ctx context.Context, id int, in HarvestLocationInput) (*HarvestLocation, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	h, err := scanHarvestLocation(s.pool.QueryRow(ctx, `
		UPDATE harvest_locations
		SET code = $2, name = $3, is_active = COALESCE($4, is_active)
		WHERE id = $1
		RETURNING id, code, name, is_active, created_at
	`, id, strings.TrimSpace(in.Code), strings.TrimSpace(in.Name), in.IsActive))
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("harvest location %q already exists", in.Code)
		}
		return nil, notFoundOr(err, "harvest location", id)
	}
	return h, nil
}

func (s *harvestLocationService) DeactivateHarvestLocation(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE harvest_locations SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate harvest location %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("harvest location %d not found", id)
	}
	return nil
}
