package processor

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MergeDatasets 把清洗后的两份数据集按行合并为一张表
// 列取并集：只存在于一份数据中的列在另一份的行上补NaN
// 行序为 general 在前 hazardous 在后，行号从0重排
func MergeDatasets(general, hazardous dataframe.DataFrame) (dataframe.DataFrame, error) {
	union := unionColumns(general, hazardous)

	g, err := alignColumns(general, hazardous, union)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	h, err := alignColumns(hazardous, general, union)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	merged := g.RBind(h)
	if merged.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("合并数据集失败: %w", merged.Err)
	}
	return merged, nil
}

// unionColumns 列并集，保持第一份数据的列序，追加第二份独有的列
func unionColumns(a, b dataframe.DataFrame) []string {
	union := append([]string{}, a.Names()...)
	for _, n := range b.Names() {
		if !Contains(union, n) {
			union = append(union, n)
		}
	}
	return union
}

// alignColumns 把df对齐到并集列：缺少的列补NaN，类型与other冲突时提升
func alignColumns(df, other dataframe.DataFrame, union []string) (dataframe.DataFrame, error) {
	out := df
	for _, col := range union {
		if !hasColumn(out, col) {
			nan := make([]float64, out.Nrow())
			for i := range nan {
				nan[i] = math.NaN()
			}
			out = out.Mutate(series.New(nan, series.Float, col))
			if out.Err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("补齐列 %s 失败: %w", col, out.Err)
			}
			continue
		}

		if hasColumn(other, col) {
			target := promoteType(typeOf(out, col), typeOf(other, col))
			if typeOf(out, col) != target {
				out = out.Mutate(series.New(out.Col(col), target, col))
				if out.Err != nil {
					return dataframe.DataFrame{}, fmt.Errorf("转换列 %s 类型失败: %w", col, out.Err)
				}
			}
		}
	}

	out = out.Select(union)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("对齐列顺序失败: %w", out.Err)
	}
	return out, nil
}

func typeOf(df dataframe.DataFrame, col string) series.Type {
	names := df.Names()
	types := df.Types()
	for i, n := range names {
		if n == col {
			return types[i]
		}
	}
	return series.String
}

// promoteType 两个类型不一致时选并集类型：数值间提升为Float，否则退回String
func promoteType(a, b series.Type) series.Type {
	if a == b {
		return a
	}
	if isNumericType(a) && isNumericType(b) {
		return series.Float
	}
	return series.String
}

func isNumericType(t series.Type) bool {
	return t == series.Int || t == series.Float
}
