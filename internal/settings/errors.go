package settings

import "errors"

var (
	// ErrUnrecognisedSetting reports a settings key outside the default schema.
	ErrUnrecognisedSetting = errors.New("unrecognised setting")

	// ErrUnsupportedTensorShape reports a dielectric tensor that is not a
	// scalar, a 3-vector, or a 3x3 matrix.
	ErrUnsupportedTensorShape = errors.New("unsupported tensor shape")

	// ErrUnsupportedElasticTensorShape reports an elastic constant that is
	// not a scalar, a 6x6 Voigt matrix, or a full (3,3,3,3) tensor.
	ErrUnsupportedElasticTensorShape = errors.New("unsupported elastic tensor shape")

	// ErrUnrecognisedDopingFormat reports a doping string that fails the
	// range or comma-list grammar.
	ErrUnrecognisedDopingFormat = errors.New("unrecognised doping format")

	// ErrUnrecognisedTemperatureFormat reports a temperature string that
	// fails the range or comma-list grammar.
	ErrUnrecognisedTemperatureFormat = errors.New("unrecognised temperature format")

	// ErrUnrecognisedDeformationPotentialFormat reports a deformation
	// potential string that is neither a file reference nor one or two
	// comma-separated numbers.
	ErrUnrecognisedDeformationPotentialFormat = errors.New("unrecognised deformation potential format")
)
