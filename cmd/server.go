/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darkstoreops/approval-api/internal/api"
	"github.com/darkstoreops/approval-api/internal/config"
	"github.com/darkstoreops/approval-api/internal/container"
	"github.com/darkstoreops/approval-api/internal/metrics"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the approval API server.
The server will listen on the configured host and port, and provide
REST interfaces for finance and procurement approval workflows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化日志
		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 3. 初始化链路追踪
		if cfg.Tracing.Enabled {
			if err := api.InitTracing("approval-api", cfg.Tracing.JaegerEndpoint); err != nil {
				logger.WithError(err).Warn("failed to initialize tracing, continuing without it")
				cfg.Tracing.Enabled = false
			}
		}

		// 4. 初始化容器
		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 5. 后台指标采集
		collectorCtx, stopCollector := context.WithCancel(context.Background())
		defer stopCollector()
		collector := metrics.NewCollector(ctr.DB(), ctr.TaskRepository(), 0, logger)
		go collector.Run(collectorCtx)

		// 6. 初始化控制器与路由
		taskController := api.NewTaskController(ctr.QueryService(), ctr.DecisionService())
		summaryController := api.NewSummaryController(ctr.SummaryService())

		router := api.SetupRoutes(&api.RouterDeps{
			DB:                ctr.DB(),
			SummaryCache:      ctr.SummaryCache(),
			Hub:               ctr.Hub(),
			Validator:         ctr.Validator(),
			TaskController:    taskController,
			SummaryController: summaryController,
			Tracing:           cfg.Tracing.Enabled,
		}, cfg)

		// 7. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			logger.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Fatal("failed to start server")
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Fatal("server forced to shutdown")
		}
		if cfg.Tracing.Enabled {
			_ = api.ShutdownTracing(ctx)
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
}
