package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/speedial/speedial/internal/domain"
)

// ErrLastGroup is returned when deleting the only remaining group.
var ErrLastGroup = errors.New("cannot delete the last remaining group")

// GroupStore persists groups. Operations that touch more than one row
// (insert-at-top, cascade delete, reorder) run inside a single
// transaction so the dense-pos invariant is never observable half-applied.
type GroupStore struct {
	db *DB
}

func NewGroupStore(db *DB) *GroupStore {
	return &GroupStore{db: db}
}

// Create inserts g at the requested position. PositionTop shifts every
// existing group down by one; PositionBottom appends after the current
// maximum pos. The first group ever created is marked selected.
func (s *GroupStore) Create(ctx context.Context, g *domain.Group, position domain.GroupPosition) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&count); err != nil {
			return fmt.Errorf("count groups: %w", err)
		}
		if count == 0 {
			g.IsSelected = true
		}

		if position == domain.PositionTop {
			if _, err := tx.ExecContext(ctx, `UPDATE groups SET pos = pos + 1`); err != nil {
				return fmt.Errorf("shift groups: %w", err)
			}
			g.Pos = 0
		} else {
			var maxPos sql.NullInt64
			if err := tx.QueryRowContext(ctx, `SELECT MAX(pos) FROM groups`).Scan(&maxPos); err != nil {
				return fmt.Errorf("max group pos: %w", err)
			}
			if maxPos.Valid {
				g.Pos = int(maxPos.Int64) + 1
			} else {
				g.Pos = 0
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO groups (name, pos, is_selected, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			g.Name, g.Pos, g.IsSelected, g.CreatedAt, g.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("group id: %w", err)
		}
		g.ID = id
		return nil
	})
}

func (s *GroupStore) Get(ctx context.Context, id int64) (*domain.Group, error) {
	g := &domain.Group{}
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, pos, is_selected, created_at, updated_at FROM groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.Pos, &g.IsSelected, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return g, nil
}

// List returns all groups in display order.
func (s *GroupStore) List(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, pos, is_selected, created_at, updated_at FROM groups ORDER BY pos ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Pos, &g.IsSelected, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *GroupStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

// Update rewrites the mutable fields of g. Updating an absent id is a
// no-op; callers are expected to have verified existence.
func (s *GroupStore) Update(ctx context.Context, g *domain.Group) error {
	g.UpdatedAt = time.Now()
	_, err := s.db.conn.ExecContext(ctx,
		`UPDATE groups SET name = ?, pos = ?, is_selected = ?, updated_at = ? WHERE id = ?`,
		g.Name, g.Pos, g.IsSelected, g.UpdatedAt, g.ID,
	)
	return err
}

// DeleteCascade removes the group and every dial referencing it, then
// renumbers the surviving groups so their pos stays dense. Deleting the
// last remaining group is rejected with ErrLastGroup.
func (s *GroupStore) DeleteCascade(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&count); err != nil {
			return fmt.Errorf("count groups: %w", err)
		}
		if count <= 1 {
			return ErrLastGroup
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM dials WHERE group_id = ?`, id); err != nil {
			return fmt.Errorf("delete group dials: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return renumberGroups(ctx, tx)
	})
}

// SetSelected atomically clears the selection flag on every group and
// sets it on id.
func (s *GroupStore) SetSelected(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE groups SET is_selected = 0 WHERE is_selected = 1`); err != nil {
			return fmt.Errorf("clear selection: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE groups SET is_selected = 1, updated_at = ? WHERE id = ?`, time.Now(), id)
		if err != nil {
			return fmt.Errorf("set selection: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("set selection: group %d: %w", id, sql.ErrNoRows)
		}
		return nil
	})
}

// Reorder rewrites every group's pos to its index in ids. ids must be a
// permutation of the full group set.
func (s *GroupStore) Reorder(ctx context.Context, ids []int64) error {
	now := time.Now()
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`UPDATE groups SET pos = ?, updated_at = ? WHERE id = ?`, i, now, id); err != nil {
				return fmt.Errorf("reorder group %d: %w", id, err)
			}
		}
		return nil
	})
}

// renumberGroups rewrites group pos values to 0..n-1 preserving the
// current order.
func renumberGroups(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM groups ORDER BY pos ASC`)
	if err != nil {
		return err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE groups SET pos = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("renumber group %d: %w", id, err)
		}
	}
	return nil
}
