package parallel

// MinBandRows is the smallest band worth a goroutine hop.
const MinBandRows = 8

// Band is a half-open range of rows.
type Band struct {
	Y0, Y1 int
}

// Bands splits height rows into at most 2*workers bands of at least
// MinBandRows rows each. The bands are ordered and cover every row once.
func Bands(height, workers int) []Band {
	if height <= 0 {
		return nil
	}
	n := max(workers, 1) * 2
	if limit := height / MinBandRows; n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}

	bands := make([]Band, n)
	y := 0
	for i := range n {
		rows := height / n
		if i < height%n {
			rows++
		}
		bands[i] = Band{Y0: y, Y1: y + rows}
		y += rows
	}
	return bands
}
