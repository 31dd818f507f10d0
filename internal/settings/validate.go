package settings

import "fmt"

// Validate normalizes user settings against the default schema. See
// ValidateAgainst.
func Validate(user Settings) (Settings, error) {
	return ValidateAgainst(user, Defaults())
}

// ValidateAgainst overlays user onto a copy of schema, normalizes the typed
// keys in a fixed order, and rejects keys the schema does not recognise. The
// inputs are never mutated; on error no partial settings are returned.
func ValidateAgainst(user, schema Settings) (Settings, error) {
	merged := schema.clone()
	for key, value := range user {
		merged[key] = value
	}

	if err := normalizeSeries(merged, "doping", ParseDoping); err != nil {
		return nil, err
	}
	if err := normalizeSeries(merged, "temperatures", ParseTemperatures); err != nil {
		return nil, err
	}
	if err := normalizeDeformationPotential(merged); err != nil {
		return nil, err
	}
	for _, key := range []string{"static_dielectric", "high_frequency_dielectric"} {
		if merged[key] == nil {
			continue
		}
		tensor, err := CastTensor(merged[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		merged[key] = tensor
	}
	if merged["elastic_constant"] != nil {
		tensor, err := CastElasticTensor(merged["elastic_constant"])
		if err != nil {
			return nil, fmt.Errorf("elastic_constant: %w", err)
		}
		merged["elastic_constant"] = tensor
	}

	for key := range merged {
		if _, ok := schema[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnrecognisedSetting, key)
		}
	}
	return merged, nil
}

// normalizeSeries promotes a scalar to a singleton sequence, parses a string
// through the field's grammar, and coerces the result to []float64.
func normalizeSeries(merged Settings, key string, parse func(string) ([]float64, error)) error {
	switch value := merged[key].(type) {
	case string:
		values, err := parse(value)
		if err != nil {
			return err
		}
		merged[key] = values
		return nil
	default:
		if scalar, ok := asFloat(value); ok {
			merged[key] = []float64{scalar}
			return nil
		}
		values, ok := asFloatSlice(value)
		if !ok {
			return fmt.Errorf("%s: cannot coerce %T to a numeric array", key, value)
		}
		merged[key] = values
		return nil
	}
}

func normalizeDeformationPotential(merged Settings) error {
	switch value := merged["deformation_potential"].(type) {
	case nil:
		return nil
	case string:
		parsed, err := ParseDeformationPotential(value)
		if err != nil {
			return err
		}
		merged["deformation_potential"] = parsed
		return nil
	case [2]float64:
		return nil
	default:
		if _, ok := asFloat(value); ok {
			return nil
		}
		pair, ok := asFloatSlice(value)
		if !ok || len(pair) != 2 {
			return fmt.Errorf("%w: %v", ErrUnrecognisedDeformationPotentialFormat, value)
		}
		merged["deformation_potential"] = [2]float64{pair[0], pair[1]}
		return nil
	}
}
