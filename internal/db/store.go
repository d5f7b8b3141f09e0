package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds the hand-written queries for users, canvases, and snapshots.
// Ledger tables are managed transactionally by the ledger package.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Canvas struct {
	ID        string
	Name      string
	OwnerID   string
	Width     float64
	Height    float64
	Padding   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID        string
	CanvasID  string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password, display_name, created_at`,
		p.ID, p.Email, p.Password, p.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`,
		email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`,
		id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

type CreateCanvasParams struct {
	ID      string
	Name    string
	OwnerID string
	Width   float64
	Height  float64
	Padding float64
}

func (s *Store) CreateCanvas(ctx context.Context, p CreateCanvasParams) (Canvas, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO canvases (id, name, owner_id, width, height, padding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, name, owner_id, width, height, padding, created_at, updated_at`,
		p.ID, p.Name, p.OwnerID, p.Width, p.Height, p.Padding)
	return scanCanvas(row)
}

func (s *Store) GetCanvas(ctx context.Context, id string) (Canvas, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, width, height, padding, created_at, updated_at
		 FROM canvases WHERE id = $1`, id)
	return scanCanvas(row)
}

func (s *Store) ListCanvasesForOwner(ctx context.Context, ownerID string) ([]Canvas, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, owner_id, width, height, padding, created_at, updated_at
		 FROM canvases WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var canvases []Canvas
	for rows.Next() {
		c, err := scanCanvas(rows)
		if err != nil {
			return nil, err
		}
		canvases = append(canvases, c)
	}
	return canvases, rows.Err()
}

func (s *Store) DeleteCanvas(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM canvases WHERE id = $1`, id)
	return err
}

func (s *Store) TouchCanvas(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE canvases SET updated_at = now() WHERE id = $1`, id)
	return err
}

type CreateSnapshotParams struct {
	ID       string
	CanvasID string
	Version  int32
	Document json.RawMessage
}

func (s *Store) CreateSnapshot(ctx context.Context, p CreateSnapshotParams) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO canvas_snapshots (id, canvas_id, version, document)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, canvas_id, version, document, created_at`,
		p.ID, p.CanvasID, p.Version, p.Document)
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.CanvasID, &snap.Version, &snap.Document, &snap.CreatedAt)
	return snap, err
}

func (s *Store) GetLatestSnapshot(ctx context.Context, canvasID string) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, canvas_id, version, document, created_at
		 FROM canvas_snapshots WHERE canvas_id = $1
		 ORDER BY version DESC LIMIT 1`, canvasID)
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.CanvasID, &snap.Version, &snap.Document, &snap.CreatedAt)
	return snap, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCanvas(row scannable) (Canvas, error) {
	var c Canvas
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.Width, &c.Height, &c.Padding, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
