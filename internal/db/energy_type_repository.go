package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/powerlevel/internal/energy"
)

// EnergyTypeRepository stores custom energy types in PostgreSQL.
// It implements energy.CustomTypeSource.
type EnergyTypeRepository struct {
	db *pgxpool.Pool
}

// NewEnergyTypeRepository creates a new EnergyTypeRepository.
func NewEnergyTypeRepository(db *pgxpool.Pool) *EnergyTypeRepository {
	return &EnergyTypeRepository{db: db}
}

// LoadCustomTypes returns all custom types in creation order.
func (r *EnergyTypeRepository) LoadCustomTypes(ctx context.Context) ([]energy.TypeDefinition, error) {
	query := `
		SELECT type_id, name, color, formula
		FROM energy_types
		ORDER BY created_at, type_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying energy types: %w", err)
	}
	defer rows.Close()

	var defs []energy.TypeDefinition
	for rows.Next() {
		var d energy.TypeDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Color, &d.Formula); err != nil {
			return nil, fmt.Errorf("scanning energy type row: %w", err)
		}
		defs = append(defs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating energy type rows: %w", err)
	}

	return defs, nil
}

// SaveCustomType upserts a custom energy type.
func (r *EnergyTypeRepository) SaveCustomType(ctx context.Context, def energy.TypeDefinition) error {
	query := `
		INSERT INTO energy_types (type_id, name, color, formula)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (type_id)
		DO UPDATE SET name = $2, color = $3, formula = $4
	`
	if _, err := r.db.Exec(ctx, query, def.ID, def.Name, def.Color, def.Formula); err != nil {
		return fmt.Errorf("upserting energy type %q: %w", def.ID, err)
	}
	return nil
}

// DeleteCustomType removes a custom energy type.
func (r *EnergyTypeRepository) DeleteCustomType(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM energy_types WHERE type_id = $1`, id); err != nil {
		return fmt.Errorf("deleting energy type %q: %w", id, err)
	}
	return nil
}
