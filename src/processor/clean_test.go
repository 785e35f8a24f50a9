package processor

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WastePrediction/src/config"
)

// readTestCSV 与生产读取入口保持一致的解析配置
func readTestCSV(t *testing.T, content string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.ReadCSV(strings.NewReader(content),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "null"}),
	)
	require.NoError(t, df.Err)
	return df
}

func testDataConfig() *config.DataConfig {
	return &config.DataConfig{
		Columns: map[string]string{
			"date":   "generated_date",
			"target": "predicted_waste_next_day",
		},
		Features: []string{
			"weight_kg", "cost_per_kg", "disposal_method",
			"recyclable", "hazardous", "storage_duration_days",
		},
		Categorical: map[string][]string{
			"general":   {"disposal_method", "recyclable"},
			"hazardous": {"disposal_method", "hazardous"},
		},
	}
}

const generalCSV = `generated_date,weight_kg,cost_per_kg,disposal_method,recyclable,storage_duration_days,predicted_waste_next_day
2024-01-01,10.0,0.5,Landfill,yes,3,11.0
2024-01-02,12.0,0.6,Recycling,no,2,12.5
not-a-date,13.0,0.6,Landfill,yes,1,13.0
2024-01-04,14.0,0.7,Compost,no,4,14.0
,15.0,0.7,Landfill,yes,2,15.0
2024-01-06,16.0,0.8,Recycling,no,3,
2024-01-07,17.0,0.8,Compost,yes,5,17.5
2024-01-08,18.0,0.9,Landfill,no,1,18.0
2024-01-09,19.0,0.9,Recycling,yes,2,19.0
2024-01-10,20.0,1.0,Landfill,no,3,20.0
`

func TestCleanDatasetDropsInvalidRows(t *testing.T) {
	df := readTestCSV(t, generalCSV)
	require.Equal(t, 10, df.Nrow())

	cleaned, err := CleanDataset(df, testDataConfig(), "general")
	require.NoError(t, err)

	// 2行无效日期 + 1行缺失目标值
	assert.Equal(t, 7, cleaned.Nrow())

	// 日期统一为标准格式
	assert.Equal(t, "2024-01-01 00:00:00", cleaned.Col("generated_date").Elem(0).String())
}

func TestCleanDatasetEncodesCategoricals(t *testing.T) {
	df := readTestCSV(t, generalCSV)
	cleaned, err := CleanDataset(df, testDataConfig(), "general")
	require.NoError(t, err)

	// 编码在排序后的取值上分配: Compost=0, Landfill=1, Recycling=2
	disposal := cleaned.Col("disposal_method")
	assert.Equal(t, series.Int, disposal.Type())
	assert.Equal(t, 1.0, disposal.Elem(0).Float()) // Landfill
	assert.Equal(t, 2.0, disposal.Elem(1).Float()) // Recycling
	assert.Equal(t, 0.0, disposal.Elem(2).Float()) // Compost

	// no=0, yes=1
	recyclable := cleaned.Col("recyclable")
	assert.Equal(t, 1.0, recyclable.Elem(0).Float())
	assert.Equal(t, 0.0, recyclable.Elem(1).Float())
}

func TestCleanDatasetMissingCategoricalIsMinusOne(t *testing.T) {
	csv := `generated_date,disposal_method,recyclable,predicted_waste_next_day
2024-01-01,Landfill,yes,10.0
2024-01-02,,no,11.0
2024-01-03,Recycling,yes,12.0
`
	cleaned, err := CleanDataset(readTestCSV(t, csv), testDataConfig(), "general")
	require.NoError(t, err)
	require.Equal(t, 3, cleaned.Nrow())

	disposal := cleaned.Col("disposal_method")
	assert.Equal(t, 0.0, disposal.Elem(0).Float())  // Landfill
	assert.Equal(t, -1.0, disposal.Elem(1).Float()) // 缺失
	assert.Equal(t, 1.0, disposal.Elem(2).Float())  // Recycling
}

func TestCleanDatasetIndependentEncodingPerDataset(t *testing.T) {
	gCSV := `generated_date,disposal_method,recyclable,predicted_waste_next_day
2024-01-01,Recycling,yes,10.0
2024-01-02,Landfill,no,11.0
`
	hCSV := `generated_date,disposal_method,hazardous,predicted_waste_next_day
2024-01-01,Incineration,yes,10.0
2024-01-02,Landfill,no,11.0
`
	dcfg := testDataConfig()

	g, err := CleanDataset(readTestCSV(t, gCSV), dcfg, "general")
	require.NoError(t, err)
	h, err := CleanDataset(readTestCSV(t, hCSV), dcfg, "hazardous")
	require.NoError(t, err)

	// 编码以数据集为单位独立生成，同一取值在两份数据中可得到不同编码
	assert.Equal(t, 1.0, g.Col("disposal_method").Elem(0).Float()) // Recycling > Landfill
	assert.Equal(t, 0.0, g.Col("disposal_method").Elem(1).Float())
	assert.Equal(t, 0.0, h.Col("disposal_method").Elem(0).Float()) // Incineration < Landfill
	assert.Equal(t, 1.0, h.Col("disposal_method").Elem(1).Float())
}

func TestCleanDatasetMissingColumn(t *testing.T) {
	csv := "weight_kg\n1.0\n"
	_, err := CleanDataset(readTestCSV(t, csv), testDataConfig(), "general")
	assert.Error(t, err)
}

func TestParseAnyTime(t *testing.T) {
	for _, s := range []string{
		"2024-01-05", "2024-01-05 08:30:00", "2024/01/05", "2024-01-05T08:30:00Z",
	} {
		_, ok := parseAnyTime(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "not-a-date", "2024-13-45"} {
		_, ok := parseAnyTime(s)
		assert.False(t, ok, s)
	}
}
