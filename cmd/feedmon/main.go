package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppNutt/discordnewsfeednotifier/internal/config"
	"github.com/ppNutt/discordnewsfeednotifier/internal/database"
	"github.com/ppNutt/discordnewsfeednotifier/internal/discord"
	"github.com/ppNutt/discordnewsfeednotifier/internal/feed"
	"github.com/ppNutt/discordnewsfeednotifier/internal/logger"
	"github.com/ppNutt/discordnewsfeednotifier/internal/monitor"
	"github.com/ppNutt/discordnewsfeednotifier/internal/scrape"
	"github.com/ppNutt/discordnewsfeednotifier/internal/state"
)

func main() {
	configPath := flag.String("config", "configs/feedmon.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] FeedMon 启动中")
	logger.Infof("[main] 监控订阅源: %s", cfg.Feed.URL)
	logger.Infof("[main] 轮询间隔: %s", cfg.Interval())
	if cfg.Discord.WebhookURL == "" {
		logger.Warnf("[main] 未配置 Discord Webhook 地址，投递会一直失败但轮询继续")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		cancel()
	}()

	db, err := database.Open(cfg.DataDir, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开状态数据库失败: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化状态数据库失败: %v\n", err)
		os.Exit(1)
	}

	fetcher := feed.NewFetcher(cfg.Feed.URL, scrape.NewResolver())
	notifier := discord.NewClient(cfg.Discord.WebhookURL)
	store := state.NewStore(db)

	m, err := monitor.New(fetcher, notifier, store, cfg.Interval())
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建监控器失败: %v\n", err)
		os.Exit(1)
	}

	if err := m.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "监控循环出错: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("[main] FeedMon 已停止")
}
