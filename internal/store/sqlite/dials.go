package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/speedial/speedial/internal/domain"
)

// DialStore persists dials and keeps the per-group pos sequence dense
// ({0..n-1}, no gaps, no duplicates) after every structural change.
type DialStore struct {
	db *DB
}

func NewDialStore(db *DB) *DialStore {
	return &DialStore{db: db}
}

const dialColumns = `id, url, title, pos, group_id, thumb_source_type, thumb_url, thumb_data, thumb_index, click_count, created_at, updated_at`

func scanDial(row interface{ Scan(...any) error }) (*domain.Dial, error) {
	d := &domain.Dial{}
	err := row.Scan(&d.ID, &d.URL, &d.Title, &d.Pos, &d.GroupID, &d.ThumbSourceType,
		&d.ThumbURL, &d.ThumbData, &d.ThumbIndex, &d.ClickCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create appends d at the end of its group's ordering: pos becomes
// max(pos)+1 within the group, or 0 when the group is empty.
func (s *DialStore) Create(ctx context.Context, d *domain.Dial) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var maxPos sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(pos) FROM dials WHERE group_id = ?`, d.GroupID).Scan(&maxPos); err != nil {
			return fmt.Errorf("max dial pos: %w", err)
		}
		if maxPos.Valid {
			d.Pos = int(maxPos.Int64) + 1
		} else {
			d.Pos = 0
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO dials (url, title, pos, group_id, thumb_source_type, thumb_url, thumb_data, thumb_index, click_count, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.URL, d.Title, d.Pos, d.GroupID, d.ThumbSourceType, d.ThumbURL, d.ThumbData,
			d.ThumbIndex, d.ClickCount, d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert dial: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("dial id: %w", err)
		}
		d.ID = id
		return nil
	})
}

func (s *DialStore) Get(ctx context.Context, id int64) (*domain.Dial, error) {
	d, err := scanDial(s.db.conn.QueryRowContext(ctx,
		`SELECT `+dialColumns+` FROM dials WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get dial %d: %w", id, err)
	}
	return d, nil
}

// List returns every dial, ordered by group then pos.
func (s *DialStore) List(ctx context.Context) ([]domain.Dial, error) {
	return s.queryDials(ctx, `SELECT `+dialColumns+` FROM dials ORDER BY group_id ASC, pos ASC`)
}

// ListByGroup returns the dials of one group in display order.
func (s *DialStore) ListByGroup(ctx context.Context, groupID int64) ([]domain.Dial, error) {
	return s.queryDials(ctx,
		`SELECT `+dialColumns+` FROM dials WHERE group_id = ? ORDER BY pos ASC`, groupID)
}

func (s *DialStore) queryDials(ctx context.Context, query string, args ...any) ([]domain.Dial, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dials []domain.Dial
	for rows.Next() {
		d, err := scanDial(rows)
		if err != nil {
			return nil, err
		}
		dials = append(dials, *d)
	}
	return dials, rows.Err()
}

// Update rewrites the mutable fields of d. Updating an absent id is a
// no-op; callers are expected to have verified existence.
func (s *DialStore) Update(ctx context.Context, d *domain.Dial) error {
	d.UpdatedAt = time.Now()
	_, err := s.db.conn.ExecContext(ctx,
		`UPDATE dials SET url = ?, title = ?, pos = ?, group_id = ?, thumb_source_type = ?,
		 thumb_url = ?, thumb_data = ?, thumb_index = ?, click_count = ?, updated_at = ? WHERE id = ?`,
		d.URL, d.Title, d.Pos, d.GroupID, d.ThumbSourceType, d.ThumbURL, d.ThumbData,
		d.ThumbIndex, d.ClickCount, d.UpdatedAt, d.ID,
	)
	return err
}

// Delete removes the dial and renumbers its group so the remaining pos
// values stay dense.
func (s *DialStore) Delete(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var groupID int64
		err := tx.QueryRowContext(ctx, `SELECT group_id FROM dials WHERE id = ?`, id).Scan(&groupID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup dial %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM dials WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete dial: %w", err)
		}
		return renumberGroupDials(ctx, tx, groupID)
	})
}

// Reorder rewrites every listed dial's pos to its index in ids. ids must
// be a permutation of one group's full ordered dial set.
func (s *DialStore) Reorder(ctx context.Context, ids []int64) error {
	now := time.Now()
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`UPDATE dials SET pos = ?, updated_at = ? WHERE id = ?`, i, now, id); err != nil {
				return fmt.Errorf("reorder dial %d: %w", id, err)
			}
		}
		return nil
	})
}

// MoveToGroup reassigns the dial to destGroupID, appending it after the
// destination's existing dials, and renumbers the source group so the
// gap left behind is closed.
func (s *DialStore) MoveToGroup(ctx context.Context, id, destGroupID int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var srcGroupID int64
		if err := tx.QueryRowContext(ctx, `SELECT group_id FROM dials WHERE id = ?`, id).Scan(&srcGroupID); err != nil {
			return fmt.Errorf("lookup dial %d: %w", id, err)
		}
		if srcGroupID == destGroupID {
			return nil
		}

		var maxPos sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(pos) FROM dials WHERE group_id = ?`, destGroupID).Scan(&maxPos); err != nil {
			return fmt.Errorf("max dial pos: %w", err)
		}
		pos := 0
		if maxPos.Valid {
			pos = int(maxPos.Int64) + 1
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE dials SET group_id = ?, pos = ?, updated_at = ? WHERE id = ?`,
			destGroupID, pos, time.Now(), id); err != nil {
			return fmt.Errorf("move dial: %w", err)
		}
		return renumberGroupDials(ctx, tx, srcGroupID)
	})
}

// IncrementClick bumps the click counter. Ordering is untouched.
func (s *DialStore) IncrementClick(ctx context.Context, id int64) error {
	_, err := s.db.conn.ExecContext(ctx,
		`UPDATE dials SET click_count = click_count + 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	return err
}

// renumberGroupDials rewrites one group's dial pos values to 0..n-1
// preserving the current order.
func renumberGroupDials(ctx context.Context, tx *sql.Tx, groupID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM dials WHERE group_id = ? ORDER BY pos ASC`, groupID)
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
		if _, err := tx.ExecContext(ctx, `UPDATE dials SET pos = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("renumber dial %d: %w", id, err)
		}
	}
	return nil
}
