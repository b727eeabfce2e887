package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	"github.com/alejandrodnm/floatwatch/internal/ports"
)

// Multi hace fan-out a varios notificadores: la consola siempre imprime y el
// webhook, si está configurado, recibe lo mismo. Un fallo en uno no impide
// que los demás entreguen.
type Multi struct {
	targets []ports.Notifier
}

// NewMulti crea un fan-out sobre los notificadores dados.
func NewMulti(targets ...ports.Notifier) *Multi {
	return &Multi{targets: targets}
}

// Send entrega el texto a todos los targets y junta los errores.
func (m *Multi) Send(ctx context.Context, text string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Send(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyDeals entrega los deals a todos los targets y junta los errores.
func (m *Multi) NotifyDeals(ctx context.Context, deals []domain.Deal) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyDeals(ctx, deals); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
