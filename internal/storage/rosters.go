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

// RosterSummary describes a stored roster without its records.
type RosterSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Exams     int       `json:"exams"`
	Students  int       `json:"students"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Roster is a stored roster with its raw exam snapshots.
type Roster struct {
	RosterSummary
	Snapshots []domain.ExamSnapshot `json:"snapshots"`
}

const rosterColumns = `id, name, exams, students, is_active, created_at`

// SaveRoster stores snapshots as a new roster and makes it the active one.
func (s *Store) SaveRoster(ctx context.Context, name string, snaps []domain.ExamSnapshot) (RosterSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RosterSummary{}, apierrors.NewAppValidationError("roster name is required")
	}
	if len(snaps) == 0 {
		return RosterSummary{}, apierrors.NewAppValidationError("roster has no exams")
	}

	data, err := json.Marshal(snaps)
	if err != nil {
		return RosterSummary{}, apierrors.NewStorageError("encode roster", err)
	}

	summary := RosterSummary{
		ID:        newID(),
		Name:      name,
		Exams:     len(snaps),
		Students:  studentCount(snaps),
		Active:    true,
		CreatedAt: s.now().UTC(),
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE rosters SET is_active = 0 WHERE is_active = 1`); err != nil {
			return apierrors.NewStorageError("deactivate rosters", err)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO rosters
			(id, name, exams, students, data, is_active, created_at) VALUES (?, ?, ?, ?, ?, 1, ?)`,
			summary.ID, summary.Name, summary.Exams, summary.Students, string(data), summary.CreatedAt.UnixNano())
		if err != nil {
			return apierrors.NewStorageError("insert roster", err)
		}
		return nil
	})
	if err != nil {
		return RosterSummary{}, err
	}

	s.logger.InfoContext(ctx, "roster saved",
		slog.String("id", summary.ID),
		slog.String("name", summary.Name),
		slog.Int("exams", summary.Exams),
		slog.Int("students", summary.Students))
	return summary, nil
}

// ListRosters returns every roster, newest first.
func (s *Store) ListRosters(ctx context.Context) ([]RosterSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rosterColumns+` FROM rosters ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, apierrors.NewStorageError("list rosters", err)
	}
	defer rows.Close()

	out := []RosterSummary{}
	for rows.Next() {
		summary, err := scanRosterSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apierrors.NewStorageError("list rosters", err)
	}
	return out, nil
}

// GetRoster loads one roster with its snapshots.
func (s *Store) GetRoster(ctx context.Context, id string) (Roster, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rosterColumns+`, data FROM rosters WHERE id = ?`, id)
	return scanRoster(row)
}

// ActiveRoster loads the active roster. It is a NOT_FOUND error when no
// roster has been imported yet.
func (s *Store) ActiveRoster(ctx context.Context) (Roster, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rosterColumns+`, data FROM rosters WHERE is_active = 1 LIMIT 1`)
	return scanRoster(row)
}

// ActivateRoster makes id the only active roster.
func (s *Store) ActivateRoster(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE rosters SET is_active = 0 WHERE is_active = 1 AND id <> ?`, id); err != nil {
			return apierrors.NewStorageError("deactivate rosters", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE rosters SET is_active = 1 WHERE id = ?`, id)
		if err != nil {
			return apierrors.NewStorageError("activate roster", err)
		}
		return mustAffect(res, "roster")
	})
}

// DeleteRoster removes a roster. Deleting the active roster leaves no
// roster active.
func (s *Store) DeleteRoster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rosters WHERE id = ?`, id)
	if err != nil {
		return apierrors.NewStorageError("delete roster", err)
	}
	if err := mustAffect(res, "roster"); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "roster deleted", slog.String("id", id))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRosterSummary(row scanner, extra ...any) (RosterSummary, error) {
	var (
		summary RosterSummary
		active  int
		created int64
	)
	dest := append([]any{&summary.ID, &summary.Name, &summary.Exams, &summary.Students, &active, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RosterSummary{}, apierrors.NewNotFoundError("roster")
		}
		return RosterSummary{}, apierrors.NewStorageError("read roster", err)
	}
	summary.Active = active == 1
	summary.CreatedAt = time.Unix(0, created).UTC()
	return summary, nil
}

func scanRoster(row scanner) (Roster, error) {
	var data string
	summary, err := scanRosterSummary(row, &data)
	if err != nil {
		return Roster{}, err
	}
	var snaps []domain.ExamSnapshot
	if err := json.Unmarshal([]byte(data), &snaps); err != nil {
		return Roster{}, apierrors.NewStorageError("decode roster", err).WithContext("id", summary.ID)
	}
	return Roster{RosterSummary: summary, Snapshots: snaps}, nil
}

func studentCount(snaps []domain.ExamSnapshot) int {
	seen := make(map[string]bool)
	for _, exam := range snaps {
		for _, s := range exam.Students {
			seen[s.StudentID] = true
		}
	}
	return len(seen)
}
