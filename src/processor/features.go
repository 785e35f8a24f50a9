package processor

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ImputeMean 用列均值填充特征列中剩余的缺失值
// 均值在传入的全量数据上计算（合并之后、切分之前）
// 处理后这些列保证不再含NaN
func ImputeMean(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, error) {
	out := df
	for _, col := range cols {
		if !hasColumn(out, col) {
			return dataframe.DataFrame{}, fmt.Errorf("缺少特征列 %s", col)
		}

		vals := out.Col(col).Float()
		sum, cnt := 0.0, 0
		for _, v := range vals {
			if !math.IsNaN(v) {
				sum += v
				cnt++
			}
		}
		mean := 0.0
		if cnt > 0 {
			mean = sum / float64(cnt)
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = mean
			}
		}

		out = out.Mutate(series.New(vals, series.Float, col))
		if out.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("填充列 %s 失败: %w", col, out.Err)
		}
	}
	return out, nil
}

// FeatureMatrix 按特征列顺序提取行优先的特征矩阵
func FeatureMatrix(df dataframe.DataFrame, features []string) ([][]float64, error) {
	cols := make([][]float64, len(features))
	for j, f := range features {
		if !hasColumn(df, f) {
			return nil, fmt.Errorf("缺少特征列 %s", f)
		}
		cols[j] = df.Col(f).Float()
	}

	n := df.Nrow()
	X := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(features))
		for j := range features {
			row[j] = cols[j][i]
		}
		X[i] = row
	}
	return X, nil
}

// TargetVector 提取目标列
func TargetVector(df dataframe.DataFrame, target string) ([]float64, error) {
	if !hasColumn(df, target) {
		return nil, fmt.Errorf("缺少目标列 %s", target)
	}
	return df.Col(target).Float(), nil
}
