package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"WastePrediction/src/config"
	"WastePrediction/src/dashboard"
	"WastePrediction/src/datasource/email"
	"WastePrediction/src/datasource/file"
	"WastePrediction/src/processor"
	"WastePrediction/src/report"
	"WastePrediction/src/storage"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName, cfg.LogMaxSize)
	if err != nil {
		log.Fatal("初始化日志失败:", err)
	}

	pipeline := processor.NewPipeline(cfg, dcfg, logger)
	server := dashboard.NewServer(pipeline, logger)

	// 启动时先跑一次完整流水线
	runAndPublish(pipeline, server, cfg, logger)

	// 邮箱客户端：定时拉取日报附件
	emailClient := email.NewEmailClient(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)
	handler := email.NewCSVAttachmentHandler(cfg.Data.Dir)

	// 设置定时任务
	c := cron.New()

	// 使用配置中的检查间隔而不是硬编码
	interval := time.Duration(cfg.Email.CheckInterval).String() // 例如 "10m0s"
	cronSpec := fmt.Sprintf("@every %s", interval)

	err = c.AddFunc(cronSpec, func() {
		logger.Info(fmt.Sprintf("开始定时检查(间隔: %v)...", cronSpec))

		newEmail, err := email.CheckAndProcessEmails(emailClient, cfg.Email.TargetSubject, logger)
		if err != nil {
			logger.Error("检查处理邮件失败: " + err.Error())
			return
		}
		if newEmail == nil {
			return
		}

		// 将附件落盘到数据目录
		saved, err := handler.Handle(newEmail)
		if err != nil {
			logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", newEmail.UID, err))
			return
		}
		if len(saved) == 0 {
			return
		}
		logger.Info(fmt.Sprintf("已保存 %d 个数据附件，重新训练模型", len(saved)))
		runAndPublish(pipeline, server, cfg, logger)
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}

	// 启动定时任务
	c.Start()
	defer c.Stop()

	// 数据目录变更监听：文件更新后自动重新训练
	go monitorFiles(pipeline, server, cfg, logger)

	// 启动看板服务
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil {
			logger.Error(err.Error())
		}
	}()

	logger.Info(fmt.Sprintf("废弃物预测服务已启动(邮箱检查间隔: %v)，按Ctrl+C退出", interval))
	waitForShutdown(server, logger)
}

// runAndPublish 运行一次完整流水线，更新看板并输出评估报告
func runAndPublish(pipeline *processor.Pipeline, server *dashboard.Server, cfg *config.Config, logger *storage.Logger) {
	t1 := time.Now()
	result, err := pipeline.Run(true)
	if err != nil {
		logger.Error("流水线运行失败: " + err.Error())
		return
	}
	server.SetResult(result)

	if err := report.WriteReport(result, cfg.ReportFile); err != nil {
		logger.Error("写入评估报告失败: " + err.Error())
	}
	logger.Info(fmt.Sprintf("流水线运行完成，耗时: %v", time.Since(t1)))
}

// monitorFiles 监听数据目录中CSV/XLSX文件的变更
func monitorFiles(pipeline *processor.Pipeline, server *dashboard.Server, cfg *config.Config, logger *storage.Logger) {
	monitor, err := file.NewFileMonitor(cfg.Data.Dir)
	if err != nil {
		logger.Error("创建文件监听失败: " + err.Error())
		return
	}
	defer monitor.Close()

	err = monitor.Watch(func(filePath string) {
		logger.Info("检测到数据文件更新: " + filepath.Base(filePath))
		runAndPublish(pipeline, server, cfg, logger)
	})
	if err != nil {
		logger.Error("文件监听异常: " + err.Error())
	}
}

func waitForShutdown(server *dashboard.Server, logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("收到信号: " + sig.String() + "，正在退出...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("关闭看板服务失败: " + err.Error())
	}
	logger.Close()
	os.Exit(0)
}
