package processor

import (
	"fmt"
	"path/filepath"
	"time"

	"WastePrediction/src/config"
	"WastePrediction/src/datasource/file"
	"WastePrediction/src/model"
	"WastePrediction/src/storage"

	"github.com/google/uuid"
)

// 评估中使用的模型名称
const (
	ModelLinear = "Linear Regression"
	ModelTree   = "Decision Tree"
	ModelForest = "Random Forest"
)

// ModelResult 单个模型在测试集上的评估结果
// Actual/Predicted 成对给到展示层绘制散点与残差
type ModelResult struct {
	Name      string    `json:"name"`
	Actual    []float64 `json:"actual"`
	Predicted []float64 `json:"predicted"`
	MSE       float64   `json:"mse"`
	RMSE      float64   `json:"rmse"`
	MAE       float64   `json:"mae"`
	R2        float64   `json:"r2"`
}

// Result 一次完整流水线运行的产出
type Result struct {
	RunID         string        `json:"run_id"`
	CreatedAt     time.Time     `json:"created_at"`
	GeneralRows   int           `json:"general_rows"`
	HazardousRows int           `json:"hazardous_rows"`
	MergedRows    int           `json:"merged_rows"`
	TrainRows     int           `json:"train_rows"`
	TestRows      int           `json:"test_rows"`
	Models        []ModelResult `json:"models"`
}

// Pipeline 串联加载、清洗、合并、特征准备与训练评估
// 每次Run都从CSV文件全新构建，运行间不保留任何状态
type Pipeline struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
}

func NewPipeline(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, dcfg: dcfg, logger: logger}
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(fmt.Sprintf(format, args...))
	}
}

// Run 执行一次完整的批处理运行
// withEnsembles 为 true 时除线性回归外再训练决策树与随机森林
func (p *Pipeline) Run(withEnsembles bool) (*Result, error) {
	t1 := time.Now()

	gPath := filepath.Join(p.cfg.Data.Dir, p.cfg.Data.GeneralFile)
	hPath := filepath.Join(p.cfg.Data.Dir, p.cfg.Data.HazardousFile)

	gdata, err := file.ReadCSVToDataFrame(gPath, p.cfg.Data.Encoding)
	if err != nil {
		return nil, fmt.Errorf("加载一般废弃物数据失败: %w", err)
	}
	hdata, err := file.ReadCSVToDataFrame(hPath, p.cfg.Data.Encoding)
	if err != nil {
		return nil, fmt.Errorf("加载危险废弃物数据失败: %w", err)
	}

	gClean, err := CleanDataset(gdata, p.dcfg, "general")
	if err != nil {
		return nil, fmt.Errorf("清洗一般废弃物数据失败: %w", err)
	}
	hClean, err := CleanDataset(hdata, p.dcfg, "hazardous")
	if err != nil {
		return nil, fmt.Errorf("清洗危险废弃物数据失败: %w", err)
	}
	p.logf("清洗完成: 一般 %d->%d 行, 危险 %d->%d 行",
		gdata.Nrow(), gClean.Nrow(), hdata.Nrow(), hClean.Nrow())

	merged, err := MergeDatasets(gClean, hClean)
	if err != nil {
		return nil, err
	}

	features := p.dcfg.GetFeatures()
	imputed, err := ImputeMean(merged, features)
	if err != nil {
		return nil, err
	}

	X, err := FeatureMatrix(imputed, features)
	if err != nil {
		return nil, err
	}
	y, err := TargetVector(imputed, p.dcfg.GetColumn("target"))
	if err != nil {
		return nil, err
	}

	XTrain, XTest, yTrain, yTest := model.TrainTestSplit(X, y, p.cfg.Model.TestRatio, p.cfg.Model.RandomSeed)
	if len(XTrain) == 0 || len(XTest) == 0 {
		return nil, fmt.Errorf("样本量不足以切分训练与测试集: %d 行", len(X))
	}

	result := &Result{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now(),
		GeneralRows:   gClean.Nrow(),
		HazardousRows: hClean.Nrow(),
		MergedRows:    merged.Nrow(),
		TrainRows:     len(XTrain),
		TestRows:      len(XTest),
	}

	for _, m := range p.regressors(withEnsembles) {
		if err := m.reg.Fit(XTrain, yTrain); err != nil {
			return nil, fmt.Errorf("训练模型 %s 失败: %w", m.name, err)
		}
		pred := m.reg.Predict(XTest)
		result.Models = append(result.Models, ModelResult{
			Name:      m.name,
			Actual:    yTest,
			Predicted: pred,
			MSE:       model.MSE(yTest, pred),
			RMSE:      model.RMSE(yTest, pred),
			MAE:       model.MAE(yTest, pred),
			R2:        model.R2(yTest, pred),
		})
	}

	p.logf("流水线运行 %s 完成, 共 %d 个模型, 耗时 %v",
		result.RunID, len(result.Models), time.Since(t1))
	return result, nil
}

type namedRegressor struct {
	name string
	reg  model.Regressor
}

func (p *Pipeline) regressors(withEnsembles bool) []namedRegressor {
	out := []namedRegressor{
		{ModelLinear, model.NewLinearRegression()},
	}
	if !withEnsembles {
		return out
	}

	seed := p.cfg.Model.RandomSeed
	trees := p.cfg.Model.Trees
	if trees <= 0 {
		trees = 100
	}
	out = append(out,
		namedRegressor{ModelTree, model.NewDecisionTreeRegressor(model.WithRandomState(seed))},
		namedRegressor{ModelForest, model.NewRandomForestRegressor(
			model.WithNEstimators(trees),
			model.WithForestRandomState(seed),
		)},
	)
	return out
}
