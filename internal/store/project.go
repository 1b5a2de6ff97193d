package store

import (
	"context"
	"database/sql"
	"fmt"

	"chargemodel/internal/model"
)

// ProjectStore persists charging projects.
type ProjectStore struct {
	db *DB
}

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = `id, name, notes, charger_count, capex_per_charger,
	opex_rate, peak_utilization, charging_rate, lcfs_credit_value,
	state_rebate, project_life_years, discount_rate, created_at, updated_at`

func (s *ProjectStore) Create(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Notes,
		p.Inputs.ChargerCount,
		p.Inputs.CapExPerCharger,
		p.Inputs.OpExRate,
		p.Inputs.PeakUtilization,
		p.Inputs.ChargingRate,
		p.Inputs.LCFSCreditValue,
		p.Inputs.StateRebate,
		p.Inputs.ProjectLifeYears,
		p.Inputs.DiscountRate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Update(ctx context.Context, p *model.Project) error {
	query := `
		UPDATE projects SET
			name = ?, notes = ?, charger_count = ?, capex_per_charger = ?,
			opex_rate = ?, peak_utilization = ?, charging_rate = ?,
			lcfs_credit_value = ?, state_rebate = ?, project_life_years = ?,
			discount_rate = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Notes,
		p.Inputs.ChargerCount,
		p.Inputs.CapExPerCharger,
		p.Inputs.OpExRate,
		p.Inputs.PeakUtilization,
		p.Inputs.ChargingRate,
		p.Inputs.LCFSCreditValue,
		p.Inputs.StateRebate,
		p.Inputs.ProjectLifeYears,
		p.Inputs.DiscountRate,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Notes,
		&p.Inputs.ChargerCount,
		&p.Inputs.CapExPerCharger,
		&p.Inputs.OpExRate,
		&p.Inputs.PeakUtilization,
		&p.Inputs.ChargingRate,
		&p.Inputs.LCFSCreditValue,
		&p.Inputs.StateRebate,
		&p.Inputs.ProjectLifeYears,
		&p.Inputs.DiscountRate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
