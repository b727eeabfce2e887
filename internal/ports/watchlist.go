package ports

// WatchlistSource devuelve los items a vigilar en modo buy_now.
type WatchlistSource interface {
	// Items devuelve los market_hash_names en orden. Se relee en cada pasada
	// para que los cambios al archivo apliquen sin reiniciar.
	Items() ([]string, error)
}
