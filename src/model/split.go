package model

import (
	"math"
	"math/rand"
)

// TrainTestSplit 按比例随机切分训练集与测试集
// 固定seed时切分结果可复现；测试集大小为 ceil(n*testRatio)
func TrainTestSplit(X [][]float64, y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, yTrain, yTest []float64) {
	n := len(X)
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)
	nTest := int(math.Ceil(float64(n) * testRatio))
	for i := 0; i < n; i++ {
		if i < nTest {
			XTest = append(XTest, X[indices[i]])
			yTest = append(yTest, y[indices[i]])
		} else {
			XTrain = append(XTrain, X[indices[i]])
			yTrain = append(yTrain, y[indices[i]])
		}
	}
	return
}

// ShuffleData 以固定种子同步打乱X和y
func ShuffleData(X [][]float64, y []float64, seed int64) ([][]float64, []float64) {
	n := len(X)
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)
	XShuf := make([][]float64, n)
	yShuf := make([]float64, n)
	for i, idx := range indices {
		XShuf[i] = X[idx]
		yShuf[i] = y[idx]
	}
	return XShuf, yShuf
}
