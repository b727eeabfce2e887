package ports

import (
	"context"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

// StateStore persiste el estado de dedup entre pasadas y reinicios.
// La persistencia es best-effort: el watcher trata los fallos de load como
// estado vacío y los de save como no fatales.
type StateStore interface {
	// LoadSeen devuelve el set de listing IDs ya evaluados (modo buy_now).
	LoadSeen(ctx context.Context) (map[string]struct{}, error)

	// SaveSeen sobreescribe el set completo de listing IDs.
	SaveSeen(ctx context.Context, seen map[string]struct{}) error

	// LoadStages devuelve el mapa listing ID → stage más alta ya notificada.
	LoadStages(ctx context.Context) (map[string]domain.Stage, error)

	// SaveStages sobreescribe el mapa de stages completo.
	SaveStages(ctx context.Context, stages map[string]domain.Stage) error

	// RecordAlerts guarda los deals notificados como histórico consultable.
	RecordAlerts(ctx context.Context, mode string, deals []domain.Deal) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
