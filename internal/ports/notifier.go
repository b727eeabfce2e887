package ports

import (
	"context"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

// Notifier entrega los alerts al usuario (consola, webhook, o ambos).
type Notifier interface {
	// Send entrega un mensaje de texto plano (arranque, avisos).
	Send(ctx context.Context, text string) error

	// NotifyDeals entrega un lote de deals ya rankeados. Las implementaciones
	// que renderizan mensajes agrupan en chunks de tamaño acotado.
	NotifyDeals(ctx context.Context, deals []domain.Deal) error
}
