// excel.go 评估报告输出：每个模型一个工作表，
// 附实际-预测散点图与残差分布图
package report

import (
	"fmt"
	"math"

	"WastePrediction/src/model"
	"WastePrediction/src/processor"

	"github.com/xuri/excelize/v2"
)

const residualBins = 10

// WriteReport 把一次流水线运行的评估结果写入xlsx工作簿
func WriteReport(result *processor.Result, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, mr := range result.Models {
		sheet := sheetName(mr.Name)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("创建工作表 %s 失败: %w", sheet, err)
			}
		}
		if err := writeModelSheet(f, sheet, mr); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存评估报告失败: %w", err)
	}
	return nil
}

func writeModelSheet(f *excelize.File, sheet string, mr processor.ModelResult) error {
	headers := []string{"actual", "predicted", "residual"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	residuals := model.Residuals(mr.Actual, mr.Predicted)
	for i := range mr.Actual {
		row := i + 2
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		c, _ := excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(sheet, a, mr.Actual[i])
		f.SetCellValue(sheet, b, mr.Predicted[i])
		f.SetCellValue(sheet, c, residuals[i])
	}

	// 理想参考线的两个端点
	lo, hi := minMax(mr.Actual)
	f.SetCellValue(sheet, "E1", "ideal_x")
	f.SetCellValue(sheet, "F1", "ideal_y")
	f.SetCellValue(sheet, "E2", lo)
	f.SetCellValue(sheet, "F2", lo)
	f.SetCellValue(sheet, "E3", hi)
	f.SetCellValue(sheet, "F3", hi)

	f.SetCellValue(sheet, "E5", "Mean Squared Error")
	f.SetCellValue(sheet, "F5", mr.MSE)

	n := len(mr.Actual)
	scatter := &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{
			{
				Name:       "Predicted",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, n+1),
			},
			{
				Name:       "Ideal",
				Categories: fmt.Sprintf("%s!$E$2:$E$3", sheet),
				Values:     fmt.Sprintf("%s!$F$2:$F$3", sheet),
			},
		},
		Title: []excelize.RichTextRun{
			{Text: fmt.Sprintf("%s - Actual vs Predicted", mr.Name)},
		},
		XAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Actual Waste (kg)"}}},
		YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Predicted Waste (kg)"}}},
	}
	if err := f.AddChart(sheet, "H2", scatter); err != nil {
		return fmt.Errorf("生成散点图失败: %w", err)
	}

	labels, counts := histogram(residuals, residualBins)
	for i := range labels {
		row := i + 2
		l, _ := excelize.CoordinatesToCellName(26, row) // Z列
		c, _ := excelize.CoordinatesToCellName(27, row) // AA列
		f.SetCellValue(sheet, l, labels[i])
		f.SetCellValue(sheet, c, counts[i])
	}
	hist := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       "Residuals",
				Categories: fmt.Sprintf("%s!$Z$2:$Z$%d", sheet, len(labels)+1),
				Values:     fmt.Sprintf("%s!$AA$2:$AA$%d", sheet, len(counts)+1),
			},
		},
		Title: []excelize.RichTextRun{
			{Text: "Residuals Distribution (Actual - Predicted)"},
		},
		XAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Residuals (kg)"}}},
		YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Frequency"}}},
	}
	if err := f.AddChart(sheet, "H22", hist); err != nil {
		return fmt.Errorf("生成残差分布图失败: %w", err)
	}

	return nil
}

// histogram 等宽分箱统计，返回箱中心标签与频数
func histogram(values []float64, bins int) ([]string, []int) {
	if len(values) == 0 || bins <= 0 {
		return nil, nil
	}
	lo, hi := minMax(values)
	width := (hi - lo) / float64(bins)
	if width == 0 {
		return []string{fmt.Sprintf("%.2f", lo)}, []int{len(values)}
	}

	counts := make([]int, bins)
	for _, v := range values {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f", lo+(float64(i)+0.5)*width)
	}
	return labels, counts
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// sheetName 工作表名限长31字符
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
