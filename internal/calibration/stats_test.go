package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpietrzak/desorb/pkg/errs"
)

func TestComputeStatisticsStableCalibration(t *testing.T) {
	// Five tight runs: no CV penalty, but the runs<8 penalty applies.
	areas := []float64{50000, 51000, 52000, 51500, 49500}

	rec, err := ComputeStatistics(areas, 61)
	require.NoError(t, err)

	assert.InDelta(t, 50800.0, rec.MeanPeakArea, 1e-9)
	assert.Equal(t, 5, rec.NumRuns)
	assert.Equal(t, 61.0, rec.GasConcentrationPPM)
	assert.Less(t, rec.CVPercent, 2.0)
	assert.InDelta(t, rec.StdDeviation/rec.MeanPeakArea*100, rec.CVPercent, 1e-12)

	assert.Equal(t, 85.0, rec.QualityScore)
	assert.True(t, rec.IsValid)
	assert.Empty(t, rec.OutlierIndices)

	assert.Equal(t, 49500.0, rec.MinPeakArea)
	assert.Equal(t, 52000.0, rec.MaxPeakArea)
	assert.Equal(t, 51000.0, rec.MedianPeakArea)
}

func TestComputeStatisticsEmptyInput(t *testing.T) {
	_, err := ComputeStatistics(nil, 61)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestComputeStatisticsScoreBounds(t *testing.T) {
	cases := []struct {
		name  string
		areas []float64
	}{
		{"single run", []float64{50000}},
		{"two runs", []float64{50000, 60000}},
		{"wild scatter", []float64{100, 90000, 400, 70000, 250}},
		{"stable", []float64{5000, 5001, 5002, 5003, 5004, 5005, 5006, 5007}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ComputeStatistics(tc.areas, 61)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rec.QualityScore, 0.0)
			assert.LessOrEqual(t, rec.QualityScore, 100.0)
		})
	}
}

func TestComputeStatisticsUnstableCalibration(t *testing.T) {
	// CV% well above 10: ERROR flag, −50 penalty, record invalid.
	areas := []float64{10000, 20000, 40000, 80000, 15000}

	rec, err := ComputeStatistics(areas, 61)
	require.NoError(t, err)

	assert.Greater(t, rec.CVPercent, 10.0)
	assert.False(t, rec.IsValid)
	assert.Contains(t, rec.QualityFlags[0], "ERROR")
	// −50 for CV, −15 for 5 ≤ runs < 8.
	assert.Equal(t, 35.0, rec.QualityScore)
}

func TestComputeStatisticsTooFewRuns(t *testing.T) {
	rec, err := ComputeStatistics([]float64{50000, 50100}, 61)
	require.NoError(t, err)

	assert.False(t, rec.IsValid)
	found := false
	for _, f := range rec.QualityFlags {
		if f == "ERROR: < 3 runs - inadequate calibration data" {
			found = true
		}
	}
	assert.True(t, found, "expected the inadequate-data error flag, got %v", rec.QualityFlags)
}

func TestComputeStatisticsOutlierDetection(t *testing.T) {
	// Many tight values and one extreme spike: |z| > 3 only at the spike.
	areas := make([]float64, 0, 13)
	for i := 0; i < 12; i++ {
		areas = append(areas, 50000+float64(i))
	}
	areas = append(areas, 90000)

	rec, err := ComputeStatistics(areas, 61)
	require.NoError(t, err)
	require.Len(t, rec.OutlierIndices, 1)
	assert.Equal(t, 12, rec.OutlierIndices[0])
}

func TestComputeStatisticsPeakAreaRangeWarnings(t *testing.T) {
	rec, err := ComputeStatistics([]float64{500, 510, 505, 495, 490}, 61)
	require.NoError(t, err)
	assert.Contains(t, rec.QualityFlags, "WARNING: very low peak areas - check instrument sensitivity")
	assert.True(t, rec.IsValid, "range warnings alone must not invalidate")

	rec, err = ComputeStatistics([]float64{150000, 151000, 150500, 149500, 150200}, 61)
	require.NoError(t, err)
	assert.Contains(t, rec.QualityFlags, "WARNING: very high peak areas - check for overload")
}

func TestCloneIsDeep(t *testing.T) {
	rec, err := ComputeStatistics([]float64{50000, 51000, 52000}, 61)
	require.NoError(t, err)

	cp := rec.Clone()
	cp.RawPeakAreas[0] = -1
	cp.QualityFlags = append(cp.QualityFlags, "WARNING: mutated")

	assert.Equal(t, 50000.0, rec.RawPeakAreas[0])
	assert.NotEqual(t, len(rec.QualityFlags), len(cp.QualityFlags))
}
