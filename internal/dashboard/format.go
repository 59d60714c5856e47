package dashboard

import (
	"math"
	"strconv"

	"codeberg.org/mutker/energymon/internal/status"
)

func formatMW(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64) + " mW"
}

func formatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func stateOrOff(s status.State) string {
	if s == "" {
		return string(status.Off)
	}
	return string(s)
}
