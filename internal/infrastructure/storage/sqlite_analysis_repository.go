package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

const analysisSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	user_id       INTEGER NOT NULL,
	image_name    TEXT NOT NULL,
	completed_at  TEXT NOT NULL,
	cracks_json   TEXT NOT NULL,
	total_pct     REAL NOT NULL,
	rating        INTEGER NOT NULL,
	verdict       TEXT NOT NULL,
	snapshot_png  BLOB
);

CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses (user_id, completed_at);
`

// timeLayout фиксированной ширины, чтобы сортировка строк совпадала с хронологической
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteAnalysisRepository хранилище завершённых анализов в SQLite
type SQLiteAnalysisRepository struct {
	db *sql.DB
}

// NewSQLiteAnalysisRepository открывает базу и создаёт схему.
func NewSQLiteAnalysisRepository(dbPath string) (*SQLiteAnalysisRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(analysisSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteAnalysisRepository{db: db}, nil
}

// Close закрывает соединение с базой
func (r *SQLiteAnalysisRepository) Close() error {
	return r.db.Close()
}

// Save сохраняет анализ, повторное сохранение с тем же ID перезаписывает запись
func (r *SQLiteAnalysisRepository) Save(ctx context.Context, a entity.Analysis) error {
	cracksJSON, err := json.Marshal(a.Cracks)
	if err != nil {
		return fmt.Errorf("marshal cracks: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analyses
			(id, user_id, image_name, completed_at, cracks_json, total_pct, rating, verdict, snapshot_png)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.ImageName, a.CompletedAt.UTC().Format(timeLayout),
		string(cracksJSON), a.TotalPct, a.Rating.Value, string(a.Rating.Verdict), a.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get возвращает анализ пользователя по ID
func (r *SQLiteAnalysisRepository) Get(ctx context.Context, userID int64, id string) (entity.Analysis, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, image_name, completed_at, cracks_json, total_pct, rating, verdict, snapshot_png
		 FROM analyses WHERE id = ? AND user_id = ?`, id, userID)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Analysis{}, fmt.Errorf("%w: %s", port.ErrAnalysisNotFound, id)
	}
	if err != nil {
		return entity.Analysis{}, err
	}
	return a, nil
}

// List возвращает анализы пользователя в порядке завершения, при равном
// времени в порядке сохранения
func (r *SQLiteAnalysisRepository) List(ctx context.Context, userID int64) ([]entity.Analysis, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, image_name, completed_at, cracks_json, total_pct, rating, verdict, snapshot_png
		 FROM analyses WHERE user_id = ? ORDER BY completed_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []entity.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		a.Index = len(out) + 1
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (entity.Analysis, error) {
	var (
		a           entity.Analysis
		completedAt string
		cracksJSON  string
		ratingValue int
		verdict     string
	)
	if err := s.Scan(&a.ID, &a.UserID, &a.ImageName, &completedAt, &cracksJSON,
		&a.TotalPct, &ratingValue, &verdict, &a.Snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("scan analysis: %w", err)
	}

	t, err := time.Parse(timeLayout, completedAt)
	if err != nil {
		return a, fmt.Errorf("parse completed_at: %w", err)
	}
	a.CompletedAt = t

	if err := json.Unmarshal([]byte(cracksJSON), &a.Cracks); err != nil {
		return a, fmt.Errorf("unmarshal cracks: %w", err)
	}
	a.Rating = entity.Rating{Value: ratingValue, Verdict: entity.Verdict(verdict)}
	return a, nil
}

var _ port.AnalysisRepository = (*SQLiteAnalysisRepository)(nil)
