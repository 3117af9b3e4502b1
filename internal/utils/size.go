package utils

import "fmt"

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with one decimal, e.g. "3.4 MB".
// Values keep dividing by 1024 until they drop below 1024 or reach TB, which absorbs anything larger.
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}

	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}
