package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"WastePrediction/src/processor"
)

func sampleResult() *processor.Result {
	return &processor.Result{
		RunID:     "test-run",
		CreatedAt: time.Now(),
		TestRows:  3,
		Models: []processor.ModelResult{
			{
				Name:      processor.ModelLinear,
				Actual:    []float64{10, 12, 14},
				Predicted: []float64{10.5, 11.5, 14.2},
				MSE:       0.18,
			},
			{
				Name:      processor.ModelForest,
				Actual:    []float64{10, 12, 14},
				Predicted: []float64{9.8, 12.1, 13.9},
				MSE:       0.02,
			},
		},
	}
}

func TestWriteReportCreatesSheetPerModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report.xlsx")
	require.NoError(t, WriteReport(sampleResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, processor.ModelLinear)
	assert.Contains(t, sheets, processor.ModelForest)

	// 表头与数据
	v, err := f.GetCellValue(processor.ModelLinear, "A1")
	require.NoError(t, err)
	assert.Equal(t, "actual", v)
	v, err = f.GetCellValue(processor.ModelLinear, "B2")
	require.NoError(t, err)
	assert.Equal(t, "10.5", v)

	// MSE汇总单元格
	v, err = f.GetCellValue(processor.ModelLinear, "E5")
	require.NoError(t, err)
	assert.Equal(t, "Mean Squared Error", v)
	v, err = f.GetCellValue(processor.ModelLinear, "F5")
	require.NoError(t, err)
	assert.Equal(t, "0.18", v)
}

func TestWriteReportInvalidPath(t *testing.T) {
	err := WriteReport(sampleResult(), "/nonexistent-dir/Report.xlsx")
	assert.Error(t, err)
}

func TestHistogram(t *testing.T) {
	labels, counts := histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 5)
	require.Len(t, labels, 5)
	require.Len(t, counts, 5)

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 2, counts[0])

	// 全部相同的值落入单一箱
	labels, counts = histogram([]float64{1.5, 1.5, 1.5}, 10)
	require.Len(t, counts, 1)
	assert.Equal(t, 3, counts[0])
	assert.Equal(t, "1.50", labels[0])

	labels, counts = histogram(nil, 5)
	assert.Nil(t, labels)
	assert.Nil(t, counts)
}
