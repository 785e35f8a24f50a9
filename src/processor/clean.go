package processor

import (
	"fmt"
	"sort"
	"time"

	"WastePrediction/src/config"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 支持的日期格式，按顺序尝试
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01-02-2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

func parseAnyTime(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeTime 把可解析的日期统一为标准格式
func normalizeTime(v series.Element) series.Element {
	if t, ok := parseAnyTime(v.String()); ok {
		v.Set(t.Format("2006-01-02 15:04:05"))
	}
	return v
}

// CleanDataset 清洗单个数据集:
//  1. 丢弃日期缺失或无法解析的行
//  2. 丢弃目标值缺失的行
//  3. 对该数据集的分类列做独立整数编码
//
// dataset 为 "general" 或 "hazardous"，决定编码哪些分类列
func CleanDataset(df dataframe.DataFrame, dcfg *config.DataConfig, dataset string) (dataframe.DataFrame, error) {
	dateCol := dcfg.GetColumn("date")
	targetCol := dcfg.GetColumn("target")

	for _, col := range []string{dateCol, targetCol} {
		if !hasColumn(df, col) {
			return dataframe.DataFrame{}, fmt.Errorf("数据集 %s 缺少列 %s", dataset, col)
		}
	}

	out := df.Filter(dataframe.F{
		Colname:    dateCol,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			if el.IsNA() {
				return false
			}
			_, ok := parseAnyTime(el.String())
			return ok
		},
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("过滤无效日期失败: %w", out.Err)
	}

	if out.Nrow() > 0 {
		out = out.Mutate(series.New(out.Col(dateCol).Map(normalizeTime), series.String, dateCol))
	}

	out = out.Filter(dataframe.F{
		Colname:    targetCol,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return !el.IsNA()
		},
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("过滤缺失目标值失败: %w", out.Err)
	}

	for _, col := range dcfg.GetCategorical(dataset) {
		if !hasColumn(out, col) {
			return dataframe.DataFrame{}, fmt.Errorf("数据集 %s 缺少分类列 %s", dataset, col)
		}
		out = labelEncode(out, col)
	}

	return out, nil
}

// labelEncode 把分类列映射为整数编码
// 编码在排序后的去重取值上分配，缺失值记为-1
// 编码以单个数据集为单位独立生成，不跨数据集共享
func labelEncode(df dataframe.DataFrame, col string) dataframe.DataFrame {
	s := df.Col(col)

	seen := make(map[string]bool)
	var cats []string
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		v := el.String()
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}
	sort.Strings(cats)

	codes := make(map[string]int, len(cats))
	for i, c := range cats {
		codes[c] = i
	}

	vals := make([]int, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			vals[i] = -1
			continue
		}
		vals[i] = codes[el.String()]
	}

	return df.Mutate(series.New(vals, series.Int, col))
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
