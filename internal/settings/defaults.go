package settings

// defaultSchema is the ground-truth set of recognised settings. Keys absent
// from a user document are filled from here; keys outside this set are
// rejected. The template is read-only and copied before every validation.
var defaultSchema = Settings{
	// general
	"doping":                  []float64{-1e15, -1e16, -1e17, -1e18, 1e15, 1e16, 1e17, 1e18},
	"temperatures":            []float64{300},
	"scattering_type":         "auto",
	"interpolation_factor":    10,
	"bandgap":                 nil,
	"scissor":                 nil,
	"zero_weighted_kpoints":   "prefer",
	"free_carrier_screening":  false,
	"num_extra_kpoints":       0,
	"calculate_mobility":      true,
	"separate_mobility":       true,
	"mobility_rates_only":     false,

	// material properties
	"deformation_potential":     nil,
	"elastic_constant":          nil,
	"static_dielectric":         nil,
	"high_frequency_dielectric": nil,
	"piezoelectric_constant":    nil,
	"pop_frequency":             nil,
	"acceptor_charge":           1,
	"donor_charge":              1,
	"defect_charge":             1,
	"compensation_factor":       1.0,
	"mean_free_path":            nil,
	"constant_relaxation_time":  nil,

	// numerical performance
	"energy_cutoff":      1.5,
	"fd_tol":             0.005,
	"dos_estep":          0.01,
	"symprec":            0.01,
	"nworkers":           -1,
	"cache_wavefunction": true,

	// output
	"file_format": "json",
	"write_input": false,
	"write_mesh":  false,
	"print_log":   true,
}

// Defaults returns a fresh copy of the default schema.
func Defaults() Settings {
	return defaultSchema.clone()
}
