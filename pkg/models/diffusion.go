package models

// Transform identifies the linearized representation used for the diffusion
// tail regression. It is chosen explicitly by the caller.
type Transform string

const (
	// TransformInvSqrtT regresses rate against 1/√t. This is the only
	// transform from which a diffusion coefficient is derived.
	TransformInvSqrtT Transform = "rate_vs_inv_sqrt_t"
	// TransformSqrtT regresses cumulative hydrogen against √t.
	TransformSqrtT Transform = "cumulative_vs_sqrt_t"
	// TransformLogLog regresses log(rate) against log(t); points with
	// non-positive rate are excluded.
	TransformLogLog Transform = "log_log"
)

// DiffusionFit is the result of a tail regression. Immutable after creation.
type DiffusionFit struct {
	TailStartMinutes float64   `json:"tail_start_minutes"`
	Transform        Transform `json:"transform"`

	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	StdError  float64 `json:"std_error" doc:"Standard error of the slope"`
	NPoints   int     `json:"n_points" doc:"Points used in the regression"`

	PointsRemoved int    `json:"points_removed" doc:"Points dropped by noise filtering"`
	GoodFit       bool   `json:"good_fit" doc:"True when R² > 0.9"`
	GoodnessOfFit string `json:"goodness_of_fit" doc:"Excellent, Good, Fair or Poor"`

	// DiffusionCoefficient is populated only for the 1/√t transform (or when
	// the caller supplies a directly measured value, which takes precedence).
	DiffusionCoefficient float64  `json:"diffusion_coefficient,omitempty" doc:"D in cm²/s"`
	ThicknessCM          float64  `json:"thickness_cm,omitempty" doc:"Sample/charging-layer thickness used for D"`
	DeltaC               float64  `json:"delta_c,omitempty" doc:"Concentration driving force used for D"`
	Assumptions          []string `json:"assumptions,omitempty" doc:"Geometry and boundary assumptions behind D"`

	TemperatureCelsius    float64 `json:"temperature_celsius,omitempty"`
	ActivationEnergyKJMol float64 `json:"activation_energy_kj_mol,omitempty"`
	// LiteratureD is the reference coefficient Arrhenius-corrected to the
	// experiment temperature, when a literature value was supplied.
	LiteratureD float64 `json:"literature_d,omitempty" doc:"Reference D corrected to experiment temperature, cm²/s"`
}
