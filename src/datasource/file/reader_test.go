package file

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

const sampleCSV = `generated_date,waste_type,weight_kg,predicted_waste_next_day
2024-01-01,Organic,12.5,13.0
2024-01-02,Plastic,8.0,
2024-01-03,Metal,NA,9.5
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSVToDataFrame(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)

	df, err := ReadCSVToDataFrame(path, "utf-8")
	if err != nil {
		t.Fatal(err)
	}

	if df.Nrow() != 3 {
		t.Errorf("Nrow = %d, want 3", df.Nrow())
	}
	if df.Ncol() != 4 {
		t.Errorf("Ncol = %d, want 4", df.Ncol())
	}

	// 空值与NA都应解析为缺失
	if !df.Col("predicted_waste_next_day").Elem(1).IsNA() {
		t.Error("空单元格应为缺失值")
	}
	if !df.Col("weight_kg").Elem(2).IsNA() {
		t.Error("NA单元格应为缺失值")
	}
}

func TestReadCSVToDataFrameGBK(t *testing.T) {
	utf8CSV := "generated_date,处置方式\n2024-01-01,焚烧\n"
	gbkBytes, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(utf8CSV))
	if err != nil {
		t.Fatal(err)
	}
	path := writeTempCSV(t, string(gbkBytes))

	df, err := ReadCSVToDataFrame(path, "gbk")
	if err != nil {
		t.Fatal(err)
	}
	if got := df.Col("处置方式").Elem(0).String(); got != "焚烧" {
		t.Errorf("GBK解码结果 = %q", got)
	}
}

func TestReadCSVToDataFrameMissingFile(t *testing.T) {
	if _, err := ReadCSVToDataFrame("/nonexistent/file.csv", "utf-8"); err == nil {
		t.Error("文件不存在时应当报错")
	}
}
