// server.go 预测结果Web看板：首页图表 + JSON接口 + 实时日志
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"WastePrediction/src/processor"
	"WastePrediction/src/storage"
)

// Runner 重新运行预测流水线的接口
type Runner interface {
	Run(withEnsembles bool) (*processor.Result, error)
}

// Server 看板服务，持有最近一次流水线运行结果
type Server struct {
	runner Runner
	logger *storage.Logger

	mu     sync.RWMutex
	latest *processor.Result

	httpServer *http.Server
}

// NewServer 创建看板服务
func NewServer(runner Runner, logger *storage.Logger) *Server {
	return &Server{
		runner: runner,
		logger: logger,
	}
}

// SetResult 更新最近一次运行结果(线程安全)
func (s *Server) SetResult(r *processor.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
}

// Result 读取最近一次运行结果(线程安全)
func (s *Server) Result() *processor.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Router 构建HTTP路由
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/logs", s.handleLogs)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/results", s.handleResults)
		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// Start 启动HTTP服务，阻塞直到服务退出
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // /logs 为长连接，不限制写超时
	}
	if s.logger != nil {
		s.logger.Info("看板服务已启动: " + addr)
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("看板服务异常退出: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭HTTP服务
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

/******************** 处理函数 ********************/

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleResults 返回最近一次运行的完整评估结果
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	result := s.Result()
	if result == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "暂无预测结果"})
		return
	}
	render.JSON(w, r, result)
}

// handleRefresh 重新运行流水线并更新缓存结果
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Run(true)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("刷新预测结果失败: " + err.Error())
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}
	s.SetResult(result)
	render.JSON(w, r, result)
}

// handleLogs 以分块传输方式持续推送日志
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")

	logChan := s.logger.Subscribe()

	for {
		select {
		case msg := <-logChan:
			if _, err := fmt.Fprintln(w, msg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

/******************** 首页渲染 ********************/

type modelView struct {
	Name        string
	Description string
	Chart       template.HTML
}

type indexView struct {
	RunID      string
	CreatedAt  string
	TrainRows  int
	TestRows   int
	MergedRows int
	Models     []modelView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	result := s.Result()
	if result == nil {
		http.Error(w, "暂无预测结果，请稍后刷新", http.StatusServiceUnavailable)
		return
	}

	view := indexView{
		RunID:      result.RunID,
		CreatedAt:  result.CreatedAt.Format("2006-01-02 15:04:05"),
		TrainRows:  result.TrainRows,
		TestRows:   result.TestRows,
		MergedRows: result.MergedRows,
	}
	for _, mr := range result.Models {
		view.Models = append(view.Models, modelView{
			Name:        mr.Name,
			Description: fmt.Sprintf("%s Model: Mean Squared Error = %.2f", mr.Name, mr.MSE),
			Chart:       template.HTML(scatterSVG(mr.Actual, mr.Predicted)),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil && s.logger != nil {
		s.logger.Error("渲染首页失败: " + err.Error())
	}
}

const (
	svgWidth   = 560
	svgHeight  = 420
	svgPadding = 48
)

// scatterSVG 服务端绘制实际-预测散点图，带y=x参考线
func scatterSVG(actual, predicted []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, svgWidth, svgHeight)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff" stroke="#d0d0d0"/>`)

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range actual {
		lo = math.Min(lo, math.Min(actual[i], predicted[i]))
		hi = math.Max(hi, math.Max(actual[i], predicted[i]))
	}
	if len(actual) == 0 || lo == hi {
		b.WriteString(`</svg>`)
		return b.String()
	}

	scaleX := func(v float64) float64 {
		return svgPadding + (v-lo)/(hi-lo)*float64(svgWidth-2*svgPadding)
	}
	scaleY := func(v float64) float64 {
		return float64(svgHeight-svgPadding) - (v-lo)/(hi-lo)*float64(svgHeight-2*svgPadding)
	}

	// y=x 参考线
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#d62728" stroke-dasharray="6,4"/>`,
		scaleX(lo), scaleY(lo), scaleX(hi), scaleY(hi))

	for i := range actual {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3.5" fill="#1f77b4" fill-opacity="0.7"/>`,
			scaleX(actual[i]), scaleY(predicted[i]))
	}

	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="12" text-anchor="middle">Actual Waste (kg)</text>`,
		svgWidth/2, svgHeight-12)
	fmt.Fprintf(&b, `<text x="14" y="%d" font-size="12" text-anchor="middle" transform="rotate(-90 14 %d)">Predicted Waste (kg)</text>`,
		svgHeight/2, svgHeight/2)
	b.WriteString(`</svg>`)
	return b.String()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>Waste Management Prediction Dashboard</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; margin: 0; background: #f5f6f8; color: #222; }
header { background: #1f3a5f; color: #fff; padding: 18px 32px; }
header h1 { margin: 0; font-size: 22px; }
.meta { padding: 10px 32px; color: #555; font-size: 13px; }
.model { background: #fff; margin: 18px 32px; padding: 20px; border-radius: 6px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.model h2 { margin-top: 0; font-size: 18px; }
.desc { color: #444; margin-bottom: 12px; }
</style>
</head>
<body>
<header><h1>Waste Management Prediction Dashboard</h1></header>
<div class="meta">Run {{.RunID}} · {{.CreatedAt}} · 合并样本 {{.MergedRows}} 行 (训练 {{.TrainRows}} / 测试 {{.TestRows}})</div>
{{range .Models}}
<div class="model">
<h2>{{.Name}}</h2>
<div class="desc">{{.Description}}</div>
{{.Chart}}
</div>
{{end}}
</body>
</html>
`))
