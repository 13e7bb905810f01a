// 题库与内容文档的只读检查脚本
//
// 按 configs/config.yaml 中的数据源读取题库和内容文档，检查题目合法性、
// 填空题提示以及内容小节引用的题集是否存在。发现错误时以非零状态退出。
//
// 用法: go run scripts/validate_questions.go [-config configs] [-format text|yaml]

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/repository"
	"vocab_quiz_backend/internal/service"
	"vocab_quiz_backend/internal/util"
)

func main() {
	configDir := flag.String("config", "configs", "配置目录")
	format := flag.String("format", "text", "输出格式: text 或 yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	storage, err := service.NewStorageService(&cfg.Data)
	if err != nil {
		log.Fatalf("初始化数据源失败: %v", err)
	}
	ctx := context.Background()

	raw, err := storage.Fetch(ctx, cfg.Data.QuestionsFile)
	if err != nil {
		log.Fatalf("读取题库失败 (%s): %v", storage.Location(cfg.Data.QuestionsFile), err)
	}
	sets, err := repository.ParseQuestionDocument(raw)
	if err != nil {
		log.Fatalf("解析题库失败: %v", err)
	}

	var doc *content.Document
	raw, err = storage.Fetch(ctx, cfg.Data.ContentFile)
	switch {
	case errors.Is(err, util.ErrDocumentNotFound):
		log.Printf("内容文档不存在，跳过引用检查: %s", storage.Location(cfg.Data.ContentFile))
	case err != nil:
		log.Fatalf("读取内容文档失败: %v", err)
	default:
		if doc, err = content.Parse(raw); err != nil {
			log.Fatalf("解析内容文档失败: %v", err)
		}
	}

	report := service.ValidateDocuments(sets, doc)

	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			log.Fatalf("输出失败: %v", err)
		}
		enc.Close()
	default:
		fmt.Printf("题集: %d  题目: %d  填空题: %d\n", report.Sets, report.Questions, report.Cloze)
		for _, is := range report.Issues {
			switch {
			case is.Question != 0:
				fmt.Printf("[%s] %s #%d: %s\n", is.Severity, is.Set, is.Question, is.Message)
			case is.Set != "":
				fmt.Printf("[%s] %s: %s\n", is.Severity, is.Set, is.Message)
			default:
				fmt.Printf("[%s] %s\n", is.Severity, is.Message)
			}
		}
		if len(report.Issues) == 0 {
			fmt.Println("完成！未发现问题")
		}
	}

	if report.HasErrors() {
		os.Exit(1)
	}
}
