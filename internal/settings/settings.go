package settings

// Settings is a loosely-typed settings mapping. Before validation the values
// are whatever the document decoder produced; after validation the key set
// equals the default schema and the typed keys hold canonical values
// ([]float64 doping/temperatures, Tensor dielectrics, ElasticTensor elastic
// constant).
type Settings map[string]any

// clone returns a copy deep enough that normalization never mutates the
// source mapping. Slice values are copied; tensors and scalars are value
// types already.
func (s Settings) clone() Settings {
	out := make(Settings, len(s))
	for key, value := range s {
		switch v := value.(type) {
		case []float64:
			out[key] = append([]float64(nil), v...)
		case []string:
			out[key] = append([]string(nil), v...)
		case []any:
			out[key] = append([]any(nil), v...)
		default:
			out[key] = value
		}
	}
	return out
}

// asFloat reports whether value is a plain number and returns it as float64.
// Decoders disagree on integer widths (yaml.v3 yields int, go-toml int64), so
// every numeric kind is accepted.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// asFloatSlice converts a decoded sequence of numbers to []float64. It
// accepts the concrete slice kinds the document decoders and the grammar
// parsers produce.
func asFloatSlice(value any) ([]float64, bool) {
	switch v := value.(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []int64:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := asFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
