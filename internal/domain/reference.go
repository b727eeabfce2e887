package domain

import "sort"

// reference.go — cálculo del precio de referencia por item.
//
// Dos variantes según el modo:
//   - Mean: media aritmética, para batches buy-now del mismo item.
//   - TrimmedMedian: mediana recortada, para el scan global de subastas donde
//     las muestras son pequeñas, ruidosas y con outliers extremos.
//
// Ambas devuelven (valor, ok). La ausencia se distingue siempre del cero:
// ok=false significa "sin referencia", nunca "referencia 0".

const (
	// DefaultMeanMinSamples es el mínimo de listings para formar una media.
	DefaultMeanMinSamples = 2
	// DefaultMedianMinSamples es el mínimo (sin recortar) para la mediana.
	DefaultMedianMinSamples = 3

	// trimFraction es la fracción descartada de cada extremo al recortar.
	trimFraction = 0.10
	// trimMinSize es el tamaño de muestra a partir del cual se recorta.
	trimMinSize = 6
)

// Mean devuelve la media aritmética de prices.
// Requiere al menos minSamples muestras; si no, ok=false.
func Mean(prices []float64, minSamples int) (float64, bool) {
	if minSamples <= 0 {
		minSamples = DefaultMeanMinSamples
	}
	if len(prices) < minSamples {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices)), true
}

// TrimmedMedian devuelve la mediana recortada de prices.
// Con n >= 6 descarta floor(10%·n) elementos (mínimo 1) de cada extremo antes
// de tomar la mediana; con muestras menores no recorta. Requiere al menos
// minSamples muestras sin recortar; si el recorte vacía la muestra, ok=false.
func TrimmedMedian(prices []float64, minSamples int) (float64, bool) {
	if minSamples <= 0 {
		minSamples = DefaultMedianMinSamples
	}
	n := len(prices)
	if n < minSamples {
		return 0, false
	}

	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	if n >= trimMinSize {
		k := int(float64(n) * trimFraction)
		if k < 1 {
			k = 1
		}
		sorted = sorted[k : n-k]
	}
	if len(sorted) == 0 {
		return 0, false
	}

	return median(sorted), true
}

// median asume sorted no vacío y ordenado ascendente.
func median(sorted []float64) float64 {
	m := len(sorted)
	if m%2 == 1 {
		return sorted[m/2]
	}
	return (sorted[m/2-1] + sorted[m/2]) / 2.0
}

// PositivePrices extrae los precios estrictamente positivos de los listings.
// Un listing solo contribuye a la muestra de referencia si su precio es > 0.
func PositivePrices(listings []Listing) []float64 {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.PriceUSD > 0 {
			prices = append(prices, l.PriceUSD)
		}
	}
	return prices
}
