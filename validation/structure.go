package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
)

// Structural bounds applied to any decoded JSON payload
const (
	MaxDepth        = 10
	MaxArrayLength  = 1000
	MaxObjectKeys   = 100
	MaxStringLength = 10000
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Limits configures SanitizeStructure
type Limits struct {
	MaxDepth        int
	MaxArrayLength  int
	MaxObjectKeys   int
	MaxStringLength int
	// StringLimits overrides MaxStringLength for values stored under a given key
	StringLimits map[string]int
}

// DefaultLimits returns the bounds applied to any JSON payload
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:        MaxDepth,
		MaxArrayLength:  MaxArrayLength,
		MaxObjectKeys:   MaxObjectKeys,
		MaxStringLength: MaxStringLength,
	}
}

// StructureError reports a payload that exceeds a structural bound
type StructureError struct {
	Path    string
	Message string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// SanitizeStructure walks a decoded JSON value, rejecting values that exceed
// the depth, array, key-count or string bounds. Keys outside [A-Za-z0-9_] are
// dropped and non-finite numbers become 0.
func SanitizeStructure(v any, limits Limits) (any, error) {
	w := walker{limits: limits}
	return w.sanitize(v, "$", "", 0)
}

type walker struct {
	limits Limits
}

func (w walker) sanitize(v any, path, key string, depth int) (any, error) {
	if depth > w.limits.MaxDepth {
		return nil, &StructureError{Path: path, Message: fmt.Sprintf("nesting deeper than %d levels", w.limits.MaxDepth)}
	}

	switch val := v.(type) {
	case map[string]any:
		if len(val) > w.limits.MaxObjectKeys {
			return nil, &StructureError{Path: path, Message: fmt.Sprintf("object has more than %d keys", w.limits.MaxObjectKeys)}
		}
		out := make(map[string]any, len(val))
		for k, child := range val {
			if !keyPattern.MatchString(k) {
				continue
			}
			clean, err := w.sanitize(child, path+"."+k, k, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = clean
		}
		return out, nil

	case []any:
		if len(val) > w.limits.MaxArrayLength {
			return nil, &StructureError{Path: path, Message: fmt.Sprintf("array has more than %d elements", w.limits.MaxArrayLength)}
		}
		out := make([]any, len(val))
		for i, child := range val {
			clean, err := w.sanitize(child, fmt.Sprintf("%s[%d]", path, i), key, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil

	case string:
		limit := w.limits.MaxStringLength
		if override, ok := w.limits.StringLimits[key]; ok {
			limit = override
		}
		if len(val) > limit {
			return nil, &StructureError{Path: path, Message: fmt.Sprintf("string longer than %d characters", limit)}
		}
		return val, nil

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return float64(0), nil
		}
		return val, nil

	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return json.Number("0"), nil
		}
		return val, nil

	case bool, nil:
		return val, nil

	default:
		return nil, &StructureError{Path: path, Message: fmt.Sprintf("unsupported value type %T", v)}
	}
}
