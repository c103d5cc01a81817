// Package snapshot persists analysis results in a local SQLite database so
// later runs can diff against a baseline without keeping the original
// archive around.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/fginsight/fginsight/internal/model"
)

// Snapshot is one stored analysis result. List returns snapshots with
// Project left nil; Get and Latest decode the full project model.
type Snapshot struct {
	ID                 string         `db:"id" json:"id"`
	ProjectName        string         `db:"project_name" json:"project_name"`
	ArchivePath        string         `db:"archive_path" json:"archive_path"`
	TableCount         int            `db:"table_count" json:"table_count"`
	PageCount          int            `db:"page_count" json:"page_count"`
	WorkflowCount      int            `db:"workflow_count" json:"workflow_count"`
	ServerCommandCount int            `db:"server_command_count" json:"server_command_count"`
	SkippedCount       int            `db:"skipped_count" json:"skipped_count"`
	ProjectJSON        string         `db:"project_json" json:"-"`
	Project            *model.Project `db:"-" json:"project,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// Store manages stored snapshots backed by SQLite.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new snapshot store. Pass empty string for in-memory.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "fginsight.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate snapshot database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores an analysis result as a new snapshot and returns it with the
// generated ID and timestamp populated.
func (s *Store) Save(ctx context.Context, result *model.Result, archivePath string) (*Snapshot, error) {
	projectJSON, err := json.Marshal(result.Project)
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}

	snap := &Snapshot{
		ID:                 uuid.NewString(),
		ProjectName:        result.Project.Name,
		ArchivePath:        archivePath,
		TableCount:         result.Project.Summary.TableCount,
		PageCount:          result.Project.Summary.PageCount,
		WorkflowCount:      result.Project.Summary.WorkflowCount,
		ServerCommandCount: result.Project.Summary.ServerCommandCount,
		SkippedCount:       len(result.Skipped),
		ProjectJSON:        string(projectJSON),
		Project:            result.Project,
		CreatedAt:          time.Now().UTC(),
	}

	const q = `INSERT INTO snapshots
		(id, project_name, archive_path, table_count, page_count, workflow_count,
		 server_command_count, skipped_count, project_json, created_at)
		VALUES
		(:id, :project_name, :archive_path, :table_count, :page_count, :workflow_count,
		 :server_command_count, :skipped_count, :project_json, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, snap); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// listColumns excludes project_json so listings stay cheap even with large
// stored projects.
const listColumns = `id, project_name, archive_path, table_count, page_count,
	workflow_count, server_command_count, skipped_count, created_at`

// List returns all snapshots, newest first, without their project payloads.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	const q = `SELECT ` + listColumns + ` FROM snapshots ORDER BY created_at DESC, rowid DESC`
	if err := s.db.SelectContext(ctx, &snaps, q); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

// Get returns a snapshot by ID with its project model decoded.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	if err := s.db.GetContext(ctx, &snap, "SELECT * FROM snapshots WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if err := decodeProject(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Latest returns the most recent snapshot for a project name with its
// project model decoded.
func (s *Store) Latest(ctx context.Context, projectName string) (*Snapshot, error) {
	// rowid breaks ties between snapshots saved within the same clock tick.
	var snap Snapshot
	const q = `SELECT * FROM snapshots WHERE project_name = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`
	if err := s.db.GetContext(ctx, &snap, q, projectName); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	if err := decodeProject(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete removes a snapshot by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeProject(snap *Snapshot) error {
	var p model.Project
	if err := json.Unmarshal([]byte(snap.ProjectJSON), &p); err != nil {
		return fmt.Errorf("unmarshal snapshot project: %w", err)
	}
	snap.Project = &p
	return nil
}
