// Package export writes quantified series and calibration records to CSV
// files with a commented metadata header, the archive format shared with the
// downstream plotting tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mpietrzak/desorb/pkg/models"
)

const timestampLayout = "01/02/2006 15:04:05"

// CSVExporter writes result files under a fixed directory, never overwriting
// an existing file.
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates an exporter rooted at dir. The directory is created
// on first write.
func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{dir: dir}
}

// WriteQuantified writes a quantified series to <experiment>_results.csv in
// the export directory and returns the file path.
func (e *CSVExporter) WriteQuantified(series *models.QuantifiedSeries, cal *models.CalibrationRecord) (string, error) {
	name := series.ExperimentName
	if name == "" {
		name = "experiment"
	}
	return e.writeFile(sanitize(name)+"_results", func(w io.Writer) error {
		return WriteQuantifiedTo(w, series, cal)
	})
}

// WriteCalibration writes a calibration record to <id>_processed.csv in the
// export directory and returns the file path.
func (e *CSVExporter) WriteCalibration(cal *models.CalibrationRecord) (string, error) {
	return e.writeFile(sanitize(cal.ID)+"_processed", func(w io.Writer) error {
		return WriteCalibrationTo(w, cal)
	})
}

// writeFile creates base.csv, or base_1.csv and so on when the name is
// already taken.
func (e *CSVExporter) writeFile(base string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var f *os.File
	var path string
	for i := 0; ; i++ {
		name := base + ".csv"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.csv", base, i)
		}
		path = filepath.Join(e.dir, name)

		var err error
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating export file: %w", err)
		}
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

// WriteQuantifiedTo writes the metadata header and data rows of a quantified
// series. cal may be nil when the calibration is no longer available.
func WriteQuantifiedTo(w io.Writer, series *models.QuantifiedSeries, cal *models.CalibrationRecord) error {
	if err := writeQuantifiedHeader(w, series, cal); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columnHeaders(series.Mode)); err != nil {
		return err
	}
	for i := range series.Rate {
		row := []string{
			strconv.Itoa(series.Runs[i]),
			series.Timestamps[i].Format(timestampLayout),
			fmt.Sprintf("%.2f", series.TimeMinutes[i]),
			fmt.Sprintf("%.5f", series.PeakAreas[i]),
			fmt.Sprintf("%.5f", series.PeakHeights[i]),
			formatAmount(series.Mode, series.Rate[i]),
			formatAmount(series.Mode, series.AmountPerCycle[i]),
			formatAmount(series.Mode, series.Cumulative[i]),
			strings.Join(series.QualityFlags[i], ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnHeaders(mode models.CalcMode) []string {
	rate, cycle, cumulative := "H_ppm_per_min", "H_ppm_over_cycle", "Cumulative_H_ppm"
	if mode == models.ModeSurface {
		rate, cycle, cumulative = "H_mol_cm2_per_min", "H_mol_cm2_over_cycle", "Cumulative_H_mol_cm2"
	}
	return []string{
		"Run", "Timestamp", "Time_minutes",
		"Peak_Area_µVs", "Peak_Height_µV",
		rate, cycle, cumulative, "Quality_Flags",
	}
}

// formatAmount keeps fixed decimals for ppm values but switches to
// scientific notation for surface results, which live around 1e-12.
func formatAmount(mode models.CalcMode, v float64) string {
	if mode == models.ModeSurface {
		return fmt.Sprintf("%.6e", v)
	}
	return fmt.Sprintf("%.8f", v)
}

func writeQuantifiedHeader(w io.Writer, series *models.QuantifiedSeries, cal *models.CalibrationRecord) error {
	summary := series.Summary()
	unit := "ppm"
	if series.Mode == models.ModeSurface {
		unit = "mol/cm²"
	}

	var b strings.Builder
	b.WriteString("# TDA Hydrogen Analysis Results\n")
	b.WriteString("#\n")
	b.WriteString("# === EXPERIMENT INFORMATION ===\n")
	fmt.Fprintf(&b, "# Experiment Name: %s\n", series.ExperimentName)
	fmt.Fprintf(&b, "# Calculation Mode: %s\n", series.Mode)
	b.WriteString("#\n")

	b.WriteString("# === SAMPLE PARAMETERS ===\n")
	if series.Mode == models.ModeSurface {
		fmt.Fprintf(&b, "# Surface Area: %g cm²\n", series.Params.SurfaceAreaCM2)
	} else {
		fmt.Fprintf(&b, "# Sample Weight: %g g\n", series.Params.SampleWeightG)
	}
	fmt.Fprintf(&b, "# Flow Rate: %g ml/min\n", series.Params.FlowRateMLMin)
	fmt.Fprintf(&b, "# Cycle Time: %g minutes\n", series.Params.CycleTimeMin)
	b.WriteString("#\n")

	if cal != nil {
		b.WriteString("# === CALIBRATION INFORMATION ===\n")
		fmt.Fprintf(&b, "# Calibration ID: %s\n", cal.ID)
		fmt.Fprintf(&b, "# Calibration Date: %s\n", cal.Date)
		fmt.Fprintf(&b, "# Gas Concentration: %g ppm\n", cal.GasConcentrationPPM)
		fmt.Fprintf(&b, "# Mean Peak Area: %.1f µV*s\n", cal.MeanPeakArea)
		fmt.Fprintf(&b, "# Standard Deviation: %.1f µV*s\n", cal.StdDeviation)
		fmt.Fprintf(&b, "# CV Percentage: %.2f%%\n", cal.CVPercent)
		fmt.Fprintf(&b, "# Quality Score: %.1f/100\n", cal.QualityScore)
		b.WriteString("#\n")
	}

	b.WriteString("# === DATA QUALITY SUMMARY ===\n")
	attempted := len(series.Runs) + len(series.MissingRuns)
	fmt.Fprintf(&b, "# Total Runs Attempted: %d\n", attempted)
	fmt.Fprintf(&b, "# Successful Runs: %d\n", len(series.Runs))
	fmt.Fprintf(&b, "# Failed Runs: %d\n", len(series.MissingRuns))
	if len(series.MissingRuns) > 0 {
		fmt.Fprintf(&b, "# Missing Run Numbers: %s\n", joinInts(series.MissingRuns))
	}
	fmt.Fprintf(&b, "# Flagged Points: %d\n", summary.FlaggedPoints)
	for _, warning := range series.Warnings {
		fmt.Fprintf(&b, "# Warning: %s\n", warning)
	}
	b.WriteString("#\n")

	b.WriteString("# === CALCULATED RESULTS SUMMARY ===\n")
	fmt.Fprintf(&b, "# Total Hydrogen Released: %.6g %s\n", summary.TotalAmount, unit)
	fmt.Fprintf(&b, "# Maximum Evolution Rate: %.6g %s/min\n", summary.MaxRate, unit)
	fmt.Fprintf(&b, "# Average Evolution Rate: %.6g %s/min\n", summary.AvgRate, unit)
	fmt.Fprintf(&b, "# Experiment Duration: %.1f minutes (%.2f hours)\n",
		summary.DurationMinutes, summary.DurationMinutes/60)
	b.WriteString("#\n")

	b.WriteString("# === COLUMN DEFINITIONS ===\n")
	b.WriteString("# Run: Sequential run number from GC analysis\n")
	b.WriteString("# Timestamp: Date and time of measurement (MM/DD/YYYY HH:MM:SS)\n")
	b.WriteString("# Time_minutes: Minutes elapsed from start of experiment\n")
	b.WriteString("# Peak_Area_µVs: Raw peak area from chromatograph (µV*s)\n")
	b.WriteString("# Peak_Height_µV: Raw peak height from chromatograph (µV)\n")
	fmt.Fprintf(&b, "# %s: Hydrogen evolution rate (%s/min)\n", columnHeaders(series.Mode)[5], unit)
	fmt.Fprintf(&b, "# %s: Hydrogen evolved during this cycle (%s)\n", columnHeaders(series.Mode)[6], unit)
	fmt.Fprintf(&b, "# %s: Running total of hydrogen evolved (%s)\n", columnHeaders(series.Mode)[7], unit)
	b.WriteString("# Quality_Flags: Per-point flags, semicolon separated\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCalibrationTo writes a calibration record with its raw peak areas and
// outlier markers.
func WriteCalibrationTo(w io.Writer, cal *models.CalibrationRecord) error {
	var b strings.Builder
	b.WriteString("# Calibration Data Export\n")
	fmt.Fprintf(&b, "# Calibration ID: %s\n", cal.ID)
	fmt.Fprintf(&b, "# Date: %s\n", cal.Date)
	fmt.Fprintf(&b, "# Gas Concentration: %g ppm\n", cal.GasConcentrationPPM)
	fmt.Fprintf(&b, "# Mean Peak Area: %.1f µV*s\n", cal.MeanPeakArea)
	fmt.Fprintf(&b, "# Standard Deviation: %.1f µV*s\n", cal.StdDeviation)
	fmt.Fprintf(&b, "# CV%%: %.2f%%\n", cal.CVPercent)
	fmt.Fprintf(&b, "# Quality Score: %.1f/100\n", cal.QualityScore)
	for _, flag := range cal.QualityFlags {
		fmt.Fprintf(&b, "# %s\n", flag)
	}
	b.WriteString("#\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	outliers := make(map[int]bool, len(cal.OutlierIndices))
	for _, i := range cal.OutlierIndices {
		outliers[i] = true
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Run", "Peak_Area_µVs", "Outlier_Flag"}); err != nil {
		return err
	}
	for i, area := range cal.RawPeakAreas {
		flag := ""
		if outliers[i] {
			flag = "outlier"
		}
		row := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.5f", area),
			flag,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// sanitize keeps file names portable.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
