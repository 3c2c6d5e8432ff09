package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// TemplateStore persists template configurations as JSONB documents.
type TemplateStore struct {
	pool *Pool
	now  func() time.Time
}

// NewTemplateStore creates a PostgreSQL-backed template store.
func NewTemplateStore(pool *Pool) *TemplateStore {
	return &TemplateStore{pool: pool, now: time.Now}
}

// List returns all templates ordered by creation time.
func (s *TemplateStore) List(ctx context.Context) ([]templates.Config, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data, created_at, updated_at
		FROM templates
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := []templates.Config{}
	for rows.Next() {
		c, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

// Get returns one template or templates.ErrNotFound.
func (s *TemplateStore) Get(ctx context.Context, id string) (templates.Config, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT data, created_at, updated_at
		FROM templates
		WHERE id = $1
	`, id)

	c, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return templates.Config{}, templates.ErrNotFound
	}
	if err != nil {
		return templates.Config{}, err
	}
	return c, nil
}

// Save inserts or replaces a template. created_at of an existing row is kept.
func (s *TemplateStore) Save(ctx context.Context, cfg templates.Config) (templates.Config, error) {
	if err := cfg.Validate(); err != nil {
		return templates.Config{}, err
	}
	saved := templates.Stamp(cfg, nil, s.now().UTC())

	data, err := json.Marshal(saved)
	if err != nil {
		return templates.Config{}, fmt.Errorf("encode template: %w", err)
	}

	query := `
		INSERT INTO templates (id, name, template_type, page_size, item_count, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			template_type = EXCLUDED.template_type,
			page_size = EXCLUDED.page_size,
			item_count = EXCLUDED.item_count,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	var createdAt time.Time
	err = s.pool.QueryRow(ctx, query,
		saved.ID, saved.Name, string(saved.TemplateType), saved.PageSize, len(saved.Items),
		data, saved.CreatedAt, saved.UpdatedAt,
	).Scan(&createdAt)
	if err != nil {
		return templates.Config{}, fmt.Errorf("save template: %w", err)
	}
	saved.CreatedAt = createdAt.UTC()
	return saved, nil
}

// Delete removes a template or returns templates.ErrNotFound.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if count == 0 {
		return templates.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (templates.Config, error) {
	var (
		data                 []byte
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&data, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return templates.Config{}, err
		}
		return templates.Config{}, fmt.Errorf("scan template: %w", err)
	}

	var c templates.Config
	if err := json.Unmarshal(data, &c); err != nil {
		return templates.Config{}, fmt.Errorf("decode template: %w", err)
	}
	c.CreatedAt = createdAt.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return c, nil
}
