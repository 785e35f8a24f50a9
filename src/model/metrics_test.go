package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSE(t *testing.T) {
	assert.Equal(t, 4.0, MSE([]float64{3, 4}, []float64{1, 2}))
	assert.Equal(t, 0.0, MSE([]float64{1, 2}, []float64{1, 2}))
	assert.True(t, math.IsNaN(MSE(nil, nil)))
	assert.True(t, math.IsNaN(MSE([]float64{1}, []float64{1, 2})))
}

func TestMAE(t *testing.T) {
	assert.Equal(t, 2.0, MAE([]float64{3, 4}, []float64{1, 2}))
	assert.Equal(t, 1.5, MAE([]float64{0, 0}, []float64{1, -2}))
	assert.True(t, math.IsNaN(MAE(nil, nil)))
}

func TestRMSE(t *testing.T) {
	assert.Equal(t, 2.0, RMSE([]float64{3, 4}, []float64{1, 2}))
}

func TestR2(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, R2(yTrue, yTrue))

	// 预测为均值时R2为0
	mean := []float64{2.5, 2.5, 2.5, 2.5}
	assert.InDelta(t, 0.0, R2(yTrue, mean), 1e-12)

	// 目标无方差时约定返回0
	assert.Equal(t, 0.0, R2([]float64{5, 5}, []float64{4, 6}))
}

func TestResiduals(t *testing.T) {
	got := Residuals([]float64{3, 4}, []float64{1, 6})
	assert.Equal(t, []float64{2, -2}, got)
}
