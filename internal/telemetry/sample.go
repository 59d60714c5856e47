package telemetry

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// Sample is one reading reported by the sensor node. Field names on the wire
// are the short keys the firmware emits.
type Sample struct {
	// Timestamp is the sensor-supplied epoch in ms. It may be stale or zero.
	Timestamp    int64   `json:"t"`
	PowerA       float64 `json:"pA"`
	PowerB       float64 `json:"pB"`
	FanCommanded bool    `json:"fan"`
}

// Normalize coerces an arbitrary decoded body into a Sample. It never fails.
//
//	t, pA, pB  number            -> value (NaN/Inf -> 0)
//	t          outside int64     -> 0
//	           numeric string    -> parsed value
//	           anything else     -> 0 (missing, null, false, "", objects, ...)
//	fan        true, 1, "true", "1" -> true
//	           anything else        -> false
//
// A reported power of 0 and a missing power field are indistinguishable.
func Normalize(raw map[string]any) Sample {
	return Sample{
		Timestamp:    timestamp(raw["t"]),
		PowerA:       number(raw["pA"]),
		PowerB:       number(raw["pB"]),
		FanCommanded: truthy(raw["fan"]),
	}
}

// DecodeSample reads a JSON body and normalizes it. A body that is not a JSON
// object yields the zero sample.
func DecodeSample(r io.Reader) Sample {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		raw = nil
	}
	return Normalize(raw)
}

func number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		f, _ = x.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// timestamp truncates t to whole milliseconds. Values that do not fit in an
// int64 become 0.
func timestamp(v any) int64 {
	f := math.Trunc(number(v))
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x == 1
	case int:
		return x == 1
	case int64:
		return x == 1
	case json.Number:
		return x.String() == "1"
	case string:
		return x == "true" || x == "1"
	default:
		return false
	}
}
