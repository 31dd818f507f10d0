package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseDoping parses a compact doping specification. "lo:hi:n" yields n
// geometrically spaced concentrations from lo to hi inclusive; otherwise the
// string is a comma-separated list of concentrations. Geometric spacing
// requires same-sign, non-zero endpoints.
func ParseDoping(spec string) ([]float64, error) {
	values, err := parseSeries(spec, geomSeries)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognisedDopingFormat, spec)
	}
	return values, nil
}

// ParseTemperatures parses a compact temperature specification. "lo:hi:n"
// yields n linearly spaced temperatures from lo to hi inclusive; otherwise
// the string is a comma-separated list.
func ParseTemperatures(spec string) ([]float64, error) {
	values, err := parseSeries(spec, linearSeries)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognisedTemperatureFormat, spec)
	}
	return values, nil
}

// ParseDeformationPotential parses a deformation potential specification.
// A string mentioning "h5" is an opaque file reference and is returned
// unchanged for deferred resolution. One number yields a float64; two
// comma-separated numbers yield a [2]float64 of (conduction, valence)
// potentials.
func ParseDeformationPotential(spec string) (any, error) {
	if strings.Contains(spec, "h5") {
		return spec, nil
	}

	parts := strings.Split(stripSpaces(spec), ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnrecognisedDeformationPotentialFormat, spec)
		}
		values[i] = value
	}

	switch len(values) {
	case 1:
		return values[0], nil
	case 2:
		return [2]float64{values[0], values[1]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnrecognisedDeformationPotentialFormat, spec)
	}
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

// parseSeries implements the shared range/list grammar. The series function
// expands a lo:hi:n range; the comma-list fallback parses values verbatim.
func parseSeries(spec string, series func(lo, hi float64, n int) ([]float64, error)) ([]float64, error) {
	spec = stripSpaces(spec)

	if strings.Contains(spec, ":") {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("range needs 3 parts, got %d", len(parts))
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		count, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, err
		}
		n := int(count)
		if n < 1 {
			return nil, fmt.Errorf("range needs at least one point, got %d", n)
		}
		return series(lo, hi, n)
	}

	parts := strings.Split(spec, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

func linearSeries(lo, hi float64, n int) ([]float64, error) {
	if n == 1 {
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

// geomSeries generates n geometrically spaced points. Spacing is undefined
// across a sign change, so the endpoints must share a sign; negative ranges
// are generated on magnitudes with the sign restored.
func geomSeries(lo, hi float64, n int) ([]float64, error) {
	if lo == 0 || hi == 0 || (lo < 0) != (hi < 0) {
		return nil, fmt.Errorf("geometric range endpoints must share a sign: %g, %g", lo, hi)
	}
	if n == 1 {
		return []float64{lo}, nil
	}
	values := floats.LogSpan(make([]float64, n), math.Abs(lo), math.Abs(hi))
	if lo < 0 {
		for i := range values {
			values[i] = -values[i]
		}
	}
	return values, nil
}
