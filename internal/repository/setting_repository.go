package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"darkroom/internal/domain/models"
	"darkroom/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type SettingRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepo {
	return &SettingRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SettingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	const op = "repository.setting_repository.Get"

	query, args, err := r.sb.Select("key", "value", "updated_at").
		From("settings").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var setting models.Setting
	err = r.db.QueryRow(ctx, query, args...).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrSettingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &setting, nil
}

func (r *SettingRepo) Upsert(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	const op = "repository.setting_repository.Upsert"

	query, args, err := r.sb.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now() RETURNING key, value, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var setting models.Setting
	err = r.db.QueryRow(ctx, query, args...).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &setting, nil
}
