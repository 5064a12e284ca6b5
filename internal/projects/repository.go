// Package projects persists named topology snapshots in SQLite and
// autosaves the live canvas on a schedule.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danmudi/netlab/internal/snapshot"
	"github.com/danmudi/netlab/pkg/models"
	"github.com/danmudi/netlab/pkg/plugin"
)

// Sentinel errors returned by the repository.
var (
	ErrNotFound      = errors.New("project not found")
	ErrAlreadyExists = errors.New("project name already exists")
)

// AutosaveID is the fixed id of the project Autosave upserts.
const AutosaveID = "autosave"

const autosaveName = "(autosave)"

// Project is a named, saved topology. Snapshot is nil in list results.
type Project struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Mode        models.Category  `json:"mode"`
	DeviceCount int              `json:"device_count"`
	LinkCount   int              `json:"link_count"`
	Snapshot    *models.Snapshot `json:"snapshot,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ListOptions controls pagination, sorting and name search.
type ListOptions struct {
	Limit     int    // Max results per page (default 50, max 1000).
	Offset    int    // Number of results to skip.
	SortBy    string // name, created_at or updated_at.
	SortOrder string // "asc" or "desc" (default "desc").
	Search    string // Case-insensitive substring of the name.
}

// ListResult wraps a paginated result set with a total count.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func normalizeListOptions(opts ListOptions) ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}
	return opts
}

// Repository provides access to saved projects.
type Repository interface {
	// Create stores p, assigning an id when empty and stamping times.
	Create(ctx context.Context, p *Project) error

	// Get returns a project with its snapshot.
	Get(ctx context.Context, id string) (*Project, error)

	// List returns project headers without snapshots.
	List(ctx context.Context, opts ListOptions) (*ListResult[Project], error)

	// Update replaces name, description and, when non-nil, the snapshot.
	Update(ctx context.Context, p *Project) error

	// Delete removes a project by id.
	Delete(ctx context.Context, id string) error

	// Autosave upserts the autosave project with snap.
	Autosave(ctx context.Context, snap models.Snapshot) (*Project, error)
}

// Compile-time interface guard.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a Repository and runs the projects
// migrations.
func NewSQLiteRepository(ctx context.Context, store plugin.Store) (*SQLiteRepository, error) {
	if err := store.Migrate(ctx, "projects", migrations); err != nil {
		return nil, fmt.Errorf("projects migrations: %w", err)
	}
	return &SQLiteRepository{db: store.DB(), now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Snapshot == nil {
		p.Snapshot = &models.Snapshot{}
	}
	data, err := encode(p)
	if err != nil {
		return err
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, mode, device_count, link_count, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(p.Mode), p.DeviceCount, p.LinkCount, data, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create project %q: %w", p.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Project, error) {
	var (
		p    Project
		mode string
		data string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, mode, device_count, link_count, snapshot, created_at, updated_at
		FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &mode, &p.DeviceCount, &p.LinkCount, &data, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project %q: %w", id, err)
	}
	p.Mode = models.Category(mode)

	snap, _, err := snapshot.Decode([]byte(data), snapshot.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode project %q: %w", id, err)
	}
	p.Snapshot = &snap
	return &p, nil
}

func (r *SQLiteRepository) List(ctx context.Context, opts ListOptions) (*ListResult[Project], error) {
	opts = normalizeListOptions(opts)

	sortCol := "updated_at"
	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	if col, ok := allowedSorts[opts.SortBy]; ok {
		sortCol = col
	}

	where := "1=1"
	var args []any
	if opts.Search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+opts.Search+"%")
	}

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}
	queryArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)

	//nolint:gosec // where and sortCol are validated above, not user input
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, mode, device_count, link_count, created_at, updated_at
		FROM projects WHERE `+where+`
		ORDER BY `+sortCol+` `+orderDir+`, id
		LIMIT ? OFFSET ?`, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var (
			p    Project
			mode string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &mode, &p.DeviceCount, &p.LinkCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		p.Mode = models.Category(mode)
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &ListResult[Project]{Items: items, Total: total}, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *Project) error {
	now := r.now()
	var (
		res sql.Result
		err error
	)
	if p.Snapshot != nil {
		data, encErr := encode(p)
		if encErr != nil {
			return encErr
		}
		res, err = r.db.ExecContext(ctx, `
			UPDATE projects SET name = ?, description = ?, mode = ?, device_count = ?, link_count = ?, snapshot = ?, updated_at = ?
			WHERE id = ?`,
			p.Name, p.Description, string(p.Mode), p.DeviceCount, p.LinkCount, data, now, p.ID)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			p.Name, p.Description, now, p.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update project %q: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Autosave(ctx context.Context, snap models.Snapshot) (*Project, error) {
	p := &Project{ID: AutosaveID, Name: autosaveName, Snapshot: &snap}
	data, err := encode(p)
	if err != nil {
		return nil, err
	}
	now := r.now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, mode, device_count, link_count, snapshot, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			mode = excluded.mode,
			device_count = excluded.device_count,
			link_count = excluded.link_count,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, string(p.Mode), p.DeviceCount, p.LinkCount, data, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("autosave: %w", err)
	}
	return r.Get(ctx, AutosaveID)
}

// encode fills the derived header fields from p.Snapshot and returns its
// JSON encoding.
func encode(p *Project) (string, error) {
	snap := *p.Snapshot
	p.DeviceCount = len(snap.Devices)
	p.LinkCount = len(snap.Links)
	if p.Mode == "" {
		p.Mode = inferMode(snap)
	}
	data, err := snapshot.Encode(snap, snapshot.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("encode project snapshot: %w", err)
	}
	return string(data), nil
}

// inferMode prefers the snapshot's own mode, then the network palette
// whenever a network device is present.
func inferMode(snap models.Snapshot) models.Category {
	if snap.Mode != "" {
		return snap.Mode
	}
	for _, d := range snap.Devices {
		if d.Type.Capabilities().Category == models.CategoryNetwork {
			return models.CategoryNetwork
		}
	}
	if len(snap.Devices) > 0 {
		return models.CategoryIoT
	}
	return models.CategoryNetwork
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var migrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create projects table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE projects (
					id           TEXT PRIMARY KEY,
					name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
					description  TEXT NOT NULL DEFAULT '',
					mode         TEXT NOT NULL DEFAULT 'net',
					device_count INTEGER NOT NULL DEFAULT 0,
					link_count   INTEGER NOT NULL DEFAULT 0,
					snapshot     TEXT NOT NULL,
					created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index projects by updated_at",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_projects_updated_at ON projects (updated_at)`)
			return err
		},
	},
}
