package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// NamedConfig is a stored assignment config.
type NamedConfig struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Config    domain.AssignmentConfig `json:"config"`
	Default   bool                    `json:"default"`
	Active    bool                    `json:"active"`
	CreatedAt time.Time               `json:"created_at"`
}

const configColumns = `id, name, config, is_default, is_active, created_at`

// SaveConfig stores cfg under name. The new config is not activated.
// Callers validate cfg first.
func (s *Store) SaveConfig(ctx context.Context, name string, cfg domain.AssignmentConfig) (NamedConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NamedConfig{}, apierrors.NewAppValidationError("config name is required")
	}
	data, err := encodeConfig(cfg)
	if err != nil {
		return NamedConfig{}, err
	}

	nc := NamedConfig{
		ID:        newID(),
		Name:      name,
		Config:    cfg.Clone(),
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assignment_configs
		(id, name, config, is_default, is_active, created_at) VALUES (?, ?, ?, 0, 0, ?)`,
		nc.ID, nc.Name, data, nc.CreatedAt.UnixNano())
	if err != nil {
		return NamedConfig{}, apierrors.NewStorageError("insert assignment config", err)
	}

	s.logger.InfoContext(ctx, "assignment config saved",
		slog.String("id", nc.ID),
		slog.String("name", nc.Name),
		slog.Int("bands", len(cfg.Bands)))
	return nc, nil
}

// ListConfigs returns the default config first, then the rest by age.
func (s *Store) ListConfigs(ctx context.Context) ([]NamedConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+configColumns+` FROM assignment_configs
		ORDER BY is_default DESC, created_at ASC, rowid ASC`)
	if err != nil {
		return nil, apierrors.NewStorageError("list assignment configs", err)
	}
	defer rows.Close()

	out := []NamedConfig{}
	for rows.Next() {
		nc, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, apierrors.NewStorageError("list assignment configs", err)
	}
	return out, nil
}

// GetConfig loads one config.
func (s *Store) GetConfig(ctx context.Context, id string) (NamedConfig, error) {
	return scanConfig(s.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM assignment_configs WHERE id = ?`, id))
}

// ActiveConfig loads the active config.
func (s *Store) ActiveConfig(ctx context.Context) (NamedConfig, error) {
	return scanConfig(s.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM assignment_configs
		WHERE is_active = 1 LIMIT 1`))
}

// ActivateConfig makes id the only active config.
func (s *Store) ActivateConfig(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE assignment_configs SET is_active = 1 WHERE id = ?`, id)
		if err != nil {
			return apierrors.NewStorageError("activate assignment config", err)
		}
		if err := mustAffect(res, "assignment config"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE assignment_configs SET is_active = 0 WHERE id <> ?`, id); err != nil {
			return apierrors.NewStorageError("deactivate assignment configs", err)
		}
		return nil
	})
}

// DeleteConfig removes a config. The default config cannot be deleted;
// deleting the active one reactivates the default.
func (s *Store) DeleteConfig(ctx context.Context, id string) error {
	if id == DefaultConfigID {
		return apierrors.NewConflictError("the default assignment config cannot be deleted").
			WithContext("id", id)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM assignment_configs WHERE id = ?`, id)
		if err != nil {
			return apierrors.NewStorageError("delete assignment config", err)
		}
		if err := mustAffect(res, "assignment config"); err != nil {
			return err
		}
		return s.ensureActiveConfig(ctx, tx)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "assignment config deleted", slog.String("id", id))
	return nil
}

// ensureActiveConfig activates the default config when nothing else is.
func (s *Store) ensureActiveConfig(ctx context.Context, db execer) error {
	var active int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignment_configs WHERE is_active = 1`).Scan(&active); err != nil {
		return apierrors.NewStorageError("count active assignment configs", err)
	}
	if active > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, `UPDATE assignment_configs SET is_active = 1 WHERE id = ?`, DefaultConfigID); err != nil {
		return apierrors.NewStorageError("activate default assignment config", err)
	}
	return nil
}

func encodeConfig(cfg domain.AssignmentConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", apierrors.NewStorageError("encode assignment config", err)
	}
	return string(data), nil
}

func scanConfig(row scanner) (NamedConfig, error) {
	var (
		nc       NamedConfig
		data     string
		isDef    int
		isActive int
		created  int64
	)
	if err := row.Scan(&nc.ID, &nc.Name, &data, &isDef, &isActive, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NamedConfig{}, apierrors.NewNotFoundError("assignment config")
		}
		return NamedConfig{}, apierrors.NewStorageError("read assignment config", err)
	}
	if err := json.Unmarshal([]byte(data), &nc.Config); err != nil {
		return NamedConfig{}, apierrors.NewStorageError("decode assignment config", err).WithContext("id", nc.ID)
	}
	nc.Default = isDef == 1
	nc.Active = isActive == 1
	nc.CreatedAt = time.Unix(0, created).UTC()
	return nc, nil
}
