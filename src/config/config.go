package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Data struct {
		Dir           string `json:"dir"`            // 数据目录
		GeneralFile   string `json:"general_file"`   // 一般废弃物数据文件 (Gdata.csv)
		HazardousFile string `json:"hazardous_file"` // 危险废弃物数据文件 (Hdata.csv)
		Encoding      string `json:"encoding"`       // 文件编码: "utf-8" 或 "gbk"
	} `json:"data"`

	Model struct {
		TestRatio  float64 `json:"test_ratio"`  // 测试集比例
		RandomSeed int64   `json:"random_seed"` // 随机种子，保证切分可复现
		Trees      int     `json:"trees"`       // 随机森林树数量
	} `json:"model"`

	Email struct {
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Server   string   `json:"server"`   // SMTP服务器地址
		Username string   `json:"username"` // 发件邮箱
		Password string   `json:"password"` // 发件密码/授权码
		To       []string `json:"to"`       // 报告收件人
	} `json:"send_email"`

	ListenAddr string `json:"listen_addr"` // 看板服务监听地址
	ReportFile string `json:"report_file"` // 评估报告输出路径
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
}

// DataConfig 描述两份数据集的列结构与入模特征
type DataConfig struct {
	Columns     map[string]string   `json:"columns"`     // 逻辑名 -> 实际列名
	Features    []string            `json:"features"`    // 入模特征列
	Categorical map[string][]string `json:"categorical"` // 数据集名 -> 分类列
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// GetColumn 按逻辑名取实际列名，未配置时退回逻辑名本身
func (dc *DataConfig) GetColumn(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	if col, ok := dc.Columns[name]; ok {
		return col
	}
	return name
}

func (dc *DataConfig) SetColumn(name, value string) {
	mu.Lock()
	defer mu.Unlock()
	dc.Columns[name] = value
}

// GetFeatures 返回入模特征列的副本
func (dc *DataConfig) GetFeatures() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(dc.Features))
	copy(out, dc.Features)
	return out
}

// GetCategorical 返回指定数据集的分类列
func (dc *DataConfig) GetCategorical(dataset string) []string {
	mu.RLock()
	defer mu.RUnlock()
	cols := dc.Categorical[dataset]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}
