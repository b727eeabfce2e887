package storage

// sqlite.go — persistencia del estado de dedup del watcher.
//
// Tres tablas:
//   - `seen_ids`: listing IDs ya evaluados en modo buy_now. Crece monótona-
//     mente; los listings vendidos desaparecen solos de los fetches futuros.
//   - `auction_stages`: listing ID → stage más alta ya notificada (10m/5m).
//   - `alerts`: histórico de cada alert enviado, consultable a posteriori.
//
// Los saves van en transacción: un crash entre mutación y persistencia pierde
// como mucho las entradas de la pasada en curso, nunca corrompe lo existente.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_ids (
    listing_id TEXT PRIMARY KEY,
    first_seen DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS auction_stages (
    listing_id TEXT PRIMARY KEY,
    stage      TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
    id         TEXT PRIMARY KEY,
    mode       TEXT NOT NULL,
    item_name  TEXT NOT NULL,
    listing_id TEXT NOT NULL,
    price_usd  REAL NOT NULL,
    reference  REAL NOT NULL,
    drop_pct   REAL NOT NULL,
    stage      TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_at   ON alerts(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_item ON alerts(item_name);
`

// SQLiteStore implementa ports.StateStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// LoadSeen devuelve el set completo de listing IDs ya evaluados.
func (s *SQLiteStore) LoadSeen(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT listing_id FROM seen_ids`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadSeen: query: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage.LoadSeen: scan: %w", err)
		}
		seen[id] = struct{}{}
	}
	return seen, rows.Err()
}

// SaveSeen persiste el set de IDs. Solo inserta: el set nunca se poda.
func (s *SQLiteStore) SaveSeen(ctx context.Context, seen map[string]struct{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSeen: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO seen_ids (listing_id, first_seen) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveSeen: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for id := range seen {
		if _, err := stmt.ExecContext(ctx, id, now); err != nil {
			return fmt.Errorf("storage.SaveSeen: insert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSeen: commit: %w", err)
	}
	return nil
}

// LoadStages devuelve el mapa listing ID → stage ya notificada.
func (s *SQLiteStore) LoadStages(ctx context.Context) (map[string]domain.Stage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT listing_id, stage FROM auction_stages`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadStages: query: %w", err)
	}
	defer rows.Close()

	stages := make(map[string]domain.Stage)
	for rows.Next() {
		var id, stage string
		if err := rows.Scan(&id, &stage); err != nil {
			return nil, fmt.Errorf("storage.LoadStages: scan: %w", err)
		}
		stages[id] = domain.Stage(stage)
	}
	return stages, rows.Err()
}

// SaveStages hace upsert del mapa de stages completo.
func (s *SQLiteStore) SaveStages(ctx context.Context, stages map[string]domain.Stage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveStages: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO auction_stages (listing_id, stage, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(listing_id) DO UPDATE SET
			stage      = excluded.stage,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveStages: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for id, stage := range stages {
		if _, err := stmt.ExecContext(ctx, id, string(stage), now); err != nil {
			return fmt.Errorf("storage.SaveStages: upsert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveStages: commit: %w", err)
	}
	return nil
}

// RecordAlerts guarda los deals notificados como histórico.
func (s *SQLiteStore) RecordAlerts(ctx context.Context, mode string, deals []domain.Deal) error {
	if len(deals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.RecordAlerts: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (id, mode, item_name, listing_id, price_usd, reference, drop_pct, stage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.RecordAlerts: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, d := range deals {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			mode,
			d.Listing.ItemName,
			d.Listing.ID,
			d.Listing.PriceUSD,
			d.Reference,
			d.DropPct,
			string(d.Stage),
			now,
		); err != nil {
			return fmt.Errorf("storage.RecordAlerts: insert %s: %w", d.Listing.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.RecordAlerts: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
