package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Record логирует движение. Количество передаётся строкой: NUMERIC без потери точности.
func (r *Repo) Record(ctx context.Context, m Movement) error {
	if m.Qty.IsZero() {
		return fmt.Errorf("qty must not be zero")
	}
	if m.Type == "" {
		m.Type = TypeFor(m.Qty)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO movements (actor_id, material_id, material_name, qty, type, note)
		VALUES ($1,$2,$3,$4::numeric,$5,$6)
	`, m.ActorID, m.MaterialID, m.MaterialName, m.Qty.String(), string(m.Type), m.Note)
	if err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	return nil
}

// ListByMaterial последние движения по материалу, новые сверху.
func (r *Repo) ListByMaterial(ctx context.Context, materialID string, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, actor_id, material_id, material_name, qty::text, type, note
		FROM movements
		WHERE material_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, materialID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Movement
	for rows.Next() {
		var (
			m   Movement
			qty string
			t   string
		)
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.ActorID, &m.MaterialID, &m.MaterialName, &qty, &t, &m.Note); err != nil {
			return nil, err
		}
		if m.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("movement %d qty: %w", m.ID, err)
		}
		m.Type = MoveType(t)
		res = append(res, m)
	}
	return res, rows.Err()
}
