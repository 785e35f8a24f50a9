package model

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// RandomForestRegressor 随机森林回归，各树预测取平均
type RandomForestRegressor struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64

	Trees []*DecisionTreeRegressor
}

// ForestOption 函数式配置
type ForestOption func(*RandomForestRegressor)

func WithNEstimators(n int) ForestOption {
	return func(rf *RandomForestRegressor) { rf.NEstimators = n }
}
func WithBootstrap(b bool) ForestOption {
	return func(rf *RandomForestRegressor) { rf.Bootstrap = b }
}
func WithForestMaxDepth(d int) ForestOption {
	return func(rf *RandomForestRegressor) { rf.MaxDepth = d }
}
func WithForestRandomState(seed int64) ForestOption {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}

func NewRandomForestRegressor(opts ...ForestOption) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit 并行训练各棵树，自助采样只复制索引不复制数据
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("randomforest: empty X")
	}
	if len(y) != n {
		return errors.New("randomforest: X and y length mismatch")
	}

	rf.Trees = make([]*DecisionTreeRegressor, rf.NEstimators)
	var wg sync.WaitGroup
	errCh := make(chan error, rf.NEstimators)

	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// 每棵树独立的随机源，种子与树序号绑定保证可复现
			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(idx)))

			sampleIndices := make([]int, n)
			for j := 0; j < n; j++ {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewDecisionTreeRegressor(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(rf.MaxFeatures),
				WithRandomState(rf.RandomState+int64(idx)),
			)
			if err := tree.fit(X, y, sampleIndices); err != nil {
				errCh <- err
				return
			}
			rf.Trees[idx] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// Predict 各棵树并行预测后按固定顺序取平均
func (rf *RandomForestRegressor) Predict(X [][]float64) []float64 {
	n := len(X)
	if n == 0 || len(rf.Trees) == 0 {
		return nil
	}

	allPreds := make([][]float64, len(rf.Trees))
	var wg sync.WaitGroup
	for i, tree := range rf.Trees {
		wg.Add(1)
		go func(i int, t *DecisionTreeRegressor) {
			defer wg.Done()
			allPreds[i] = t.Predict(X)
		}(i, tree)
	}
	wg.Wait()

	// 按树序号顺序累加，浮点求和顺序固定，结果可复现
	out := make([]float64, n)
	for _, preds := range allPreds {
		for i, v := range preds {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}
