package model

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// DecisionTreeRegressor CART回归树，以平方误差下降选择切分点
type DecisionTreeRegressor struct {
	MaxDepth            int     // 最大深度，0为不限制
	MinSamplesSplit     int     // 允许切分的最小样本数
	MinSamplesLeaf      int     // 叶节点最小样本数
	MinImpurityDecrease float64 // 接受切分所需的最小SSE下降
	MaxFeatures         int     // 每次切分的候选特征数，0为全部
	RandomState         int64   // 特征抽样种子

	root *rtNode
}

type rtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold 走左子树
	left      *rtNode
	right     *rtNode

	n     int
	value float64 // 叶节点输出：样本均值
}

// TreeOption 函数式配置
type TreeOption func(*DecisionTreeRegressor)

func WithMaxDepth(d int) TreeOption { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}
func WithMinImpurityDecrease(v float64) TreeOption {
	return func(t *DecisionTreeRegressor) { t.MinImpurityDecrease = v }
}
func WithMaxFeatures(k int) TreeOption { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }
func WithRandomState(seed int64) TreeOption {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}

func NewDecisionTreeRegressor(opts ...TreeOption) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		MaxDepth:            0,
		MinSamplesSplit:     2,
		MinSamplesLeaf:      1,
		MinImpurityDecrease: 0.0,
		MaxFeatures:         0,
		RandomState:         time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit 在X(n x p)和y上训练回归树
func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("dtree: empty X")
	}
	if len(y) != n {
		return errors.New("dtree: X and y length mismatch")
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.fit(X, y, idx)
}

// fit 在给定样本索引上训练，随机森林的自助采样复用该入口
func (t *DecisionTreeRegressor) fit(X [][]float64, y []float64, idx []int) error {
	if len(idx) == 0 {
		return errors.New("dtree: empty sample index")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("dtree: inconsistent number of features in X rows")
		}
	}

	rnd := rand.New(rand.NewSource(t.RandomState))
	t.root = t.buildNode(X, y, idx, 0, p, rnd)
	return nil
}

// Predict 返回每行特征的预测值
func (t *DecisionTreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = t.predictSingle(X[i])
	}
	return out
}

func (t *DecisionTreeRegressor) predictSingle(x []float64) float64 {
	if t.root == nil {
		return 0
	}
	node := t.root
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// rtSplit 单个特征上的最优切分结果
type rtSplit struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

func (t *DecisionTreeRegressor) buildNode(X [][]float64, y []float64, idx []int, depth, p int, rnd *rand.Rand) *rtNode {
	node := &rtNode{n: len(idx)}

	sum, sumSq := 0.0, 0.0
	for _, ii := range idx {
		sum += y[ii]
		sumSq += y[ii] * y[ii]
	}
	mean := sum / float64(len(idx))
	parentSSE := sumSq - sum*sum/float64(len(idx))

	// 样本纯净、数量不足或达到最大深度时生成叶节点
	if parentSSE <= 1e-12 || len(idx) < t.MinSamplesSplit {
		node.isLeaf = true
		node.value = mean
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		node.isLeaf = true
		node.value = mean
		return node
	}

	featIndices := make([]int, p)
	for j := 0; j < p; j++ {
		featIndices[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		for i := 0; i < p; i++ {
			j := i + rnd.Intn(p-i)
			featIndices[i], featIndices[j] = featIndices[j], featIndices[i]
		}
		featIndices = featIndices[:t.MaxFeatures]
		sort.Ints(featIndices)
	}

	// 各特征并行搜索最优切分，结果按特征顺序收集保证可复现
	results := make([]rtSplit, len(featIndices))
	var wg sync.WaitGroup
	for i, f := range featIndices {
		wg.Add(1)
		go func(i, f int) {
			defer wg.Done()
			results[i] = t.findBestSplitForFeature(X, y, idx, f)
		}(i, f)
	}
	wg.Wait()

	best := rtSplit{gain: 0, feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		node.isLeaf = true
		node.value = mean
		return node
	}

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.buildNode(X, y, best.leftIdx, depth+1, p, rnd)
	node.right = t.buildNode(X, y, best.rightIdx, depth+1, p, rnd)
	return node
}

type rtPair struct {
	v float64
	i int
}

// findBestSplitForFeature 在单个特征上扫描所有候选阈值
// 利用前缀和在一次遍历中计算左右子集的SSE
func (t *DecisionTreeRegressor) findBestSplitForFeature(X [][]float64, y []float64, idx []int, f int) rtSplit {
	result := rtSplit{gain: 0, feature: -1}

	pairs := make([]rtPair, 0, len(idx))
	for _, ii := range idx {
		v := X[ii][f]
		if math.IsNaN(v) {
			continue
		}
		pairs = append(pairs, rtPair{v, ii})
	}
	if len(pairs) < 2 {
		return result
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

	n := len(pairs)
	total, totalSq := 0.0, 0.0
	for _, p := range pairs {
		total += y[p.i]
		totalSq += y[p.i] * y[p.i]
	}
	parentSSE := totalSq - total*total/float64(n)

	leftSum, leftSq := 0.0, 0.0
	for s := 1; s < n; s++ {
		yv := y[pairs[s-1].i]
		leftSum += yv
		leftSq += yv * yv

		if pairs[s].v == pairs[s-1].v {
			continue
		}
		if s < t.MinSamplesLeaf || n-s < t.MinSamplesLeaf {
			continue
		}

		leftSSE := leftSq - leftSum*leftSum/float64(s)
		rightSum := total - leftSum
		rightSSE := (totalSq - leftSq) - rightSum*rightSum/float64(n-s)

		gain := parentSSE - leftSSE - rightSSE
		if gain > result.gain {
			result = rtSplit{
				gain:      gain,
				feature:   f,
				threshold: (pairs[s-1].v + pairs[s].v) / 2.0,
			}
			result.leftIdx = make([]int, 0, s)
			result.rightIdx = make([]int, 0, n-s)
			for k := 0; k < s; k++ {
				result.leftIdx = append(result.leftIdx, pairs[k].i)
			}
			for k := s; k < n; k++ {
				result.rightIdx = append(result.rightIdx, pairs[k].i)
			}
		}
	}
	return result
}
