package scores

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/scoreboard/internal/model"
)

// Coerce converts a decoded JSON value into an integer score. Numbers and
// numeric strings are accepted and truncated toward zero; anything else is
// a validation error.
func Coerce(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, errNotNumeric
		}
		return truncate(f)
	case float64:
		return truncate(v)
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, errNotNumeric
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errNotNumeric
		}
		return truncate(f)
	default:
		return 0, errNotNumeric
	}
}

var errNotNumeric = model.NewValidationError("Score must be a number")

func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, errNotNumeric
	}
	return int64(t), nil
}
