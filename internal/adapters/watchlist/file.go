package watchlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// File implementa ports.WatchlistSource leyendo un archivo de texto con un
// market_hash_name por línea. Las líneas en blanco y los comentarios con #
// se ignoran. Se relee en cada pasada.
type File struct {
	path string
}

// NewFile crea una watchlist sobre la ruta dada.
func NewFile(path string) *File {
	return &File{path: path}
}

// Items devuelve los nombres en el orden del archivo.
// Si el archivo no existe devuelve lista vacía sin error: el watcher avisa
// una vez al arrancar y sigue esperando a que aparezca.
func (f *File) Items() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("watchlist.Items: open %q: %w", f.path, err)
	}
	defer file.Close()

	var items []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("watchlist.Items: read %q: %w", f.path, err)
	}
	return items, nil
}
