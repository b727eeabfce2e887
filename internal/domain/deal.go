package domain

import "sort"

// Stage es el checkpoint de notificación de una subasta según su tiempo
// restante. Por listing, las stages solo avanzan: unseen → 10m → 5m.
type Stage string

const (
	StageNone Stage = ""
	Stage10m  Stage = "10m" // restante en (300, 600] segundos
	Stage5m   Stage = "5m"  // restante en [0, 300] segundos
)

// Ventanas de stage en segundos.
const (
	stage5mMaxSeconds  = 300
	stage10mMaxSeconds = 600
)

// StageFor clasifica un tiempo restante en su ventana de notificación.
// Fuera de las ventanas (demasiado pronto, o ya expirada) devuelve ok=false.
func StageFor(secondsLeft int64) (Stage, bool) {
	switch {
	case secondsLeft >= 0 && secondsLeft <= stage5mMaxSeconds:
		return Stage5m, true
	case secondsLeft > stage5mMaxSeconds && secondsLeft <= stage10mMaxSeconds:
		return Stage10m, true
	default:
		return StageNone, false
	}
}

// Deal es un listing cuyo precio cayó lo suficiente bajo la referencia.
// Es efímero: se recalcula en cada pasada y nunca se persiste directamente.
type Deal struct {
	Listing   Listing
	Reference float64 // precio de referencia del item
	DropPct   float64 // (reference - price) / reference × 100

	// Solo en modo subasta
	MinutesLeft float64
	Stage       Stage

	// Links derivados para el mensaje
	SearchURL string
	StallURL  string
}

// DropPct devuelve el descuento porcentual de price frente a reference.
func DropPct(reference, price float64) float64 {
	if reference <= 0 {
		return 0
	}
	return (reference - price) / reference * 100.0
}

// RankDeals ordena deals por (minutos restantes asc, drop% desc): primero lo
// que expira antes, y a igual expiración lo más descontado. Orden estable
// para que empates exactos respeten el orden de entrada.
func RankDeals(deals []Deal) []Deal {
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].MinutesLeft != deals[j].MinutesLeft {
			return deals[i].MinutesLeft < deals[j].MinutesLeft
		}
		return deals[i].DropPct > deals[j].DropPct
	})
	return deals
}
