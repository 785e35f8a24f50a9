// 命令行入口：单次运行预测流水线，输出评估指标与xlsx报告
package main

import (
	"fmt"
	"log"
	"os"

	"WastePrediction/src/config"
	"WastePrediction/src/datasource/email"
	"WastePrediction/src/processor"
	"WastePrediction/src/report"
	"WastePrediction/src/storage"
)

func main() {
	cfg, dcfg, err := config.LoadConfig("./config", "config.json", "dataconfig.json")
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	logger, err := storage.NewLogger(cfg.LogName, cfg.LogMaxSize)
	if err != nil {
		log.Fatal("初始化日志失败:", err)
	}
	defer logger.Close()

	pipeline := processor.NewPipeline(cfg, dcfg, logger)
	result, err := pipeline.Run(false)
	if err != nil {
		logger.Error("流水线运行失败: " + err.Error())
		log.Fatal(err)
	}

	for _, mr := range result.Models {
		fmt.Printf("Mean Squared Error: %v\n", mr.MSE)
	}

	if err := report.WriteReport(result, cfg.ReportFile); err != nil {
		logger.Error("写入评估报告失败: " + err.Error())
		log.Fatal(err)
	}
	fmt.Printf("评估报告已保存到: %s\n", cfg.ReportFile)

	// 带 --send 参数时把报告发送给配置的收件人
	if len(os.Args) > 1 && os.Args[1] == "--send" {
		if err := email.SendReport(cfg, cfg.ReportFile); err != nil {
			logger.Error(err.Error())
			log.Fatal(err)
		}
		fmt.Println("报告邮件发送成功")
	}
}
