package quantify

// Physical constants for the peak-area → hydrogen conversion.
//
// Mass mode folds the Argon carrier-gas molar flow, the scaling to ppm and
// the per-minute time base into a single factor:
//
//	rate_ppm_min = peakArea · gasPPM · flow · massConversionFactor / (meanPeakArea · weight)
//
// Surface mode is derived independently from the ideal-gas relation at STP
// rather than reusing the mass factor. The calibration gas concentration is a
// volume fraction, so one ml of carrier gas at gasPPM carries
//
//	gasPPM · 1e-6 (fraction) · 1e-3 L/ml / 22.414 L/mol = gasPPM · 1e-9/22.414 mol H2
//
// which gives molPerMilliliterPPM below. The per-point molar rate is then the
// measured-to-calibration signal ratio times the calibration molar flow,
// normalized by surface area:
//
//	rate_mol_cm2_min = peakArea · (gasPPM/meanPeakArea) · flow · molPerMilliliterPPM / surfaceArea
const (
	// massConversionFactor combines 7.44e-6 mol/s Argon carrier flow, the
	// 1e6 ppm scaling, the 2 g/mol H2 molar mass and the 60 s/min time
	// base, per ml/min of flow and gram of sample.
	massConversionFactor = 0.8928

	// molarVolumeSTP is the molar volume of an ideal gas at standard
	// temperature and pressure, in L/mol.
	molarVolumeSTP = 22.414

	// MolarMassH2 is the molar mass of hydrogen gas in g/mol.
	MolarMassH2 = 2.016

	// molPerMilliliterPPM converts (ml of carrier gas × ppm of H2) to moles
	// of H2 at STP.
	molPerMilliliterPPM = 1e-9 / molarVolumeSTP
)

// Low-signal thresholds, per mode. Both describe the same instrument-side
// condition (a weak detector signal, in µV·s) and are deliberately separate
// constants so the modes can diverge if the detectors ever do.
const (
	lowSignalAreaMass    = 100.0
	lowSignalAreaSurface = 100.0
)

// Plausibility bounds for processing parameters. Values outside these ranges
// are unusual for TDA and produce series-level warnings, never errors.
const (
	minTypicalWeightG   = 0.1
	maxTypicalWeightG   = 50.0
	minTypicalFlowMLMin = 1.0
	maxTypicalFlowMLMin = 100.0
	minTypicalCycleMin  = 1.0
	maxTypicalCycleMin  = 60.0
)

// PPMToMol converts a mass-normalized hydrogen concentration (ppm of sample
// weight) to moles of H2, optionally surface-normalized when surfaceAreaCM2
// is positive.
func PPMToMol(ppm, sampleWeightG, surfaceAreaCM2 float64) float64 {
	mol := ppm * sampleWeightG * 1e-6 / MolarMassH2
	if surfaceAreaCM2 > 0 {
		mol /= surfaceAreaCM2
	}
	return mol
}

// MolToPPM is the inverse of PPMToMol.
func MolToPPM(mol, sampleWeightG, surfaceAreaCM2 float64) float64 {
	total := mol
	if surfaceAreaCM2 > 0 {
		total = mol * surfaceAreaCM2
	}
	return total * MolarMassH2 * 1e6 / sampleWeightG
}
