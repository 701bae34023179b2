// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-panel-go/internal/app"
	"chat-panel-go/internal/config"
	"chat-panel-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")
	if cfg.LLM.APIKey == "" && cfg.Chat.Mode == config.ChatModeLive {
		log.Warnf("未配置 llm.api_key，AI 请求将全部返回兜底文案")
	}

	// 3. 组装依赖并注册路由
	gin.SetMode(cfg.Server.Mode)
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	application, err := app.New(rootCtx, cfg)
	if err != nil {
		log.Fatal("应用初始化失败", err)
	}
	defer application.Close()

	// 4. 启动后台会话回收任务
	application.Sessions.StartJanitor(rootCtx, cfg.Session.CleanupInterval())

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: application.Router,
	}

	go func() {
		log.Infof("服务启动于 %s (chat.mode=%s, gate.backend=%s)", srv.Addr, cfg.Chat.Mode, cfg.Gate.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
