// @title Vocab Quiz 后端 API
// @version 1.0
// @description 德语词汇测验与学习内容服务。

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"vocab_quiz_backend/internal/app"
	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置目录（包含 config.yaml）")
	flag.Parse()

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Fatal panic", zap.Any("panic", r), zap.Stack("stack"))
			logger.Log.Sync()
			log.Fatalf("fatal panic: %v", r)
		}
	}()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer logger.Log.Sync()
	application.ConfigDir = *configDir

	application.Run()
}
