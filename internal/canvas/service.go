package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/printloom/printloom/backend-go/internal/db"
	"github.com/printloom/printloom/backend-go/internal/typeid"
)

var (
	ErrNotFound          = errors.New("canvas not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidDimensions = errors.New("canvas dimensions must be positive")
)

type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

type Canvas struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"ownerId"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Padding   float64 `json:"padding"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string, width, height, padding float64) (*Canvas, error) {
	if width <= 0 || height <= 0 || padding < 0 {
		return nil, ErrInvalidDimensions
	}

	canvasID := typeid.NewCanvasID()
	dbCanvas, err := s.store.CreateCanvas(ctx, db.CreateCanvasParams{
		ID:      canvasID,
		Name:    name,
		OwnerID: ownerID,
		Width:   width,
		Height:  height,
		Padding: padding,
	})
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	// Seed the first snapshot so every canvas always has a document.
	doc := NewEmptyDocument(canvasID, name, width, height, padding)
	if _, err := s.saveSnapshot(ctx, canvasID, 1, doc); err != nil {
		return nil, err
	}

	return dbCanvasToCanvas(dbCanvas), nil
}

func (s *Service) Get(ctx context.Context, canvasID, userID string) (*Canvas, error) {
	dbCanvas, err := s.getOwned(ctx, canvasID, userID)
	if err != nil {
		return nil, err
	}
	return dbCanvasToCanvas(*dbCanvas), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Canvas, error) {
	dbCanvases, err := s.store.ListCanvasesForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}

	canvases := make([]Canvas, len(dbCanvases))
	for i, c := range dbCanvases {
		canvases[i] = *dbCanvasToCanvas(c)
	}
	return canvases, nil
}

func (s *Service) Delete(ctx context.Context, canvasID, userID string) error {
	if _, err := s.getOwned(ctx, canvasID, userID); err != nil {
		return err
	}
	return s.store.DeleteCanvas(ctx, canvasID)
}

func (s *Service) GetLatestSnapshot(ctx context.Context, canvasID, userID string) (json.RawMessage, error) {
	if _, err := s.getOwned(ctx, canvasID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, canvasID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

// LoadDocument fetches the latest document plus its version after checking
// ownership.
func (s *Service) LoadDocument(ctx context.Context, canvasID, userID string) (*Document, int32, error) {
	if _, err := s.getOwned(ctx, canvasID, userID); err != nil {
		return nil, 0, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, canvasID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("get snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, 0, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, snap.Version, nil
}

// SaveDocument writes the document as the next snapshot version and bumps
// the canvas updated_at timestamp.
func (s *Service) SaveDocument(ctx context.Context, canvasID string, version int32, doc *Document) (int32, error) {
	next := version + 1
	if _, err := s.saveSnapshot(ctx, canvasID, next, doc); err != nil {
		return 0, err
	}
	if err := s.store.TouchCanvas(ctx, canvasID); err != nil {
		return 0, fmt.Errorf("touch canvas: %w", err)
	}
	return next, nil
}

func (s *Service) saveSnapshot(ctx context.Context, canvasID string, version int32, doc *Document) (db.Snapshot, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return db.Snapshot{}, fmt.Errorf("marshal document: %w", err)
	}

	snap, err := s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:       typeid.NewSnapshotID(),
		CanvasID: canvasID,
		Version:  version,
		Document: docJSON,
	})
	if err != nil {
		return db.Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) getOwned(ctx context.Context, canvasID, userID string) (*db.Canvas, error) {
	dbCanvas, err := s.store.GetCanvas(ctx, canvasID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get canvas: %w", err)
	}
	if dbCanvas.OwnerID != userID {
		return nil, ErrForbidden
	}
	return &dbCanvas, nil
}

func dbCanvasToCanvas(c db.Canvas) *Canvas {
	return &Canvas{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		Width:     c.Width,
		Height:    c.Height,
		Padding:   c.Padding,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
