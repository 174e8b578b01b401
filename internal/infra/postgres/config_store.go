package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-capture-service/internal/domain"
)

// ConfigStore persists configuration entries in the configs table, value as JSONB.
type ConfigStore struct {
	pool *pgxpool.Pool
}

func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

func (s *ConfigStore) Get(ctx context.Context, key string) (domain.ConfigEntry, error) {
	var (
		entry domain.ConfigEntry
		raw   []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM configs WHERE key = $1`, key,
	).Scan(&entry.Key, &raw, &entry.Description, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ConfigEntry{}, domain.ErrConfigNotFound
	}
	if err != nil {
		return domain.ConfigEntry{}, fmt.Errorf("get config %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &entry.Value); err != nil {
		return domain.ConfigEntry{}, fmt.Errorf("unmarshal config %s: %w", key, err)
	}
	return entry, nil
}

func (s *ConfigStore) Set(ctx context.Context, key string, value any) (domain.ConfigEntry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return domain.ConfigEntry{}, fmt.Errorf("marshal config %s: %w", key, err)
	}

	var (
		entry  domain.ConfigEntry
		stored []byte
	)
	err = s.pool.QueryRow(ctx,
		`INSERT INTO configs (key, value, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 RETURNING key, value, description, updated_at`,
		key, string(raw),
	).Scan(&entry.Key, &stored, &entry.Description, &entry.UpdatedAt)
	if err != nil {
		return domain.ConfigEntry{}, fmt.Errorf("set config %s: %w", key, err)
	}
	if err := json.Unmarshal(stored, &entry.Value); err != nil {
		return domain.ConfigEntry{}, fmt.Errorf("unmarshal config %s: %w", key, err)
	}
	return entry, nil
}

func (s *ConfigStore) EnsureDefault(ctx context.Context, key string, value any, description string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal default %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO configs (key, value, description, updated_at) VALUES ($1, $2::jsonb, $3, now())
		 ON CONFLICT (key) DO NOTHING`,
		key, string(raw), description,
	)
	if err != nil {
		return fmt.Errorf("seed default %s: %w", key, err)
	}
	return nil
}
