package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/speedial/speedial/internal/domain"
)

// TodoStore persists todo lists and their items.
type TodoStore struct {
	db *DB
}

func NewTodoStore(db *DB) *TodoStore {
	return &TodoStore{db: db}
}

func (s *TodoStore) CreateList(ctx context.Context, l *domain.TodoList) error {
	res, err := s.db.conn.ExecContext(ctx, `INSERT INTO todo_lists (title) VALUES (?)`, l.Title)
	if err != nil {
		return fmt.Errorf("insert todo list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (s *TodoStore) ListLists(ctx context.Context) ([]domain.TodoList, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT id, title FROM todo_lists ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.TodoList
	for rows.Next() {
		var l domain.TodoList
		if err := rows.Scan(&l.ID, &l.Title); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// DeleteList removes the list and its items in one transaction.
func (s *TodoStore) DeleteList(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_items WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("delete todo items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_lists WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete todo list: %w", err)
		}
		return nil
	})
}

func (s *TodoStore) CreateItem(ctx context.Context, it *domain.TodoItem) error {
	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO todo_items (list_id, title, done) VALUES (?, ?, ?)`,
		it.ListID, it.Title, it.Done)
	if err != nil {
		return fmt.Errorf("insert todo item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

func (s *TodoStore) ListItems(ctx context.Context, listID int64) ([]domain.TodoItem, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, list_id, title, done FROM todo_items WHERE list_id = ? ORDER BY id ASC`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.TodoItem
	for rows.Next() {
		var it domain.TodoItem
		if err := rows.Scan(&it.ID, &it.ListID, &it.Title, &it.Done); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *TodoStore) SetItemDone(ctx context.Context, id int64, done bool) error {
	_, err := s.db.conn.ExecContext(ctx, `UPDATE todo_items SET done = ? WHERE id = ?`, done, id)
	return err
}

func (s *TodoStore) DeleteItem(ctx context.Context, id int64) error {
	_, err := s.db.conn.ExecContext(ctx, `DELETE FROM todo_items WHERE id = ?`, id)
	return err
}
