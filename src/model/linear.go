package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Regressor 回归模型的统一接口
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// LinearRegression 普通最小二乘线性回归，带截距项
type LinearRegression struct {
	Coef      []float64 // 各特征系数
	Intercept float64
}

func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit 通过QR分解求最小二乘解
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("linear: empty X")
	}
	if len(y) != n {
		return errors.New("linear: X and y length mismatch")
	}
	p := len(X[0])

	// 设计矩阵首列为常数1，对应截距
	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		if len(row) != p {
			return errors.New("linear: inconsistent number of features in X rows")
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, b); err != nil {
		return fmt.Errorf("最小二乘求解失败: %w", err)
	}

	m.Intercept = beta.AtVec(0)
	m.Coef = make([]float64, p)
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j + 1)
	}
	return nil
}

// Predict 返回每行特征的预测值
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		sum := m.Intercept
		for j, v := range row {
			if j < len(m.Coef) {
				sum += m.Coef[j] * v
			}
		}
		pred[i] = sum
	}
	return pred
}
