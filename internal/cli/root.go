// Package cli 命令行入口：serve 启动仪表盘服务，其余子命令各自建一个 store 直接调用远端
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decision-console/internal/config"
	"decision-console/internal/db"
	"decision-console/internal/logger"
	"decision-console/internal/router"
	"decision-console/internal/store"
	"decision-console/internal/svc"
	"decision-console/internal/tracing"

	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	out        io.Writer
	svcCtx     *svc.ServiceContext
	shutdown   tracing.ShutdownFunc
}

// NewRootCmd out 为 nil 时写到 stdout
func NewRootCmd(out io.Writer) *cobra.Command {
	if out == nil {
		out = os.Stdout
	}
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "decision-console",
		Short:         "AI 决策控制台",
		Long:          "AI 决策控制台：选择任务与策略、运行模型、查看结果与历史。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config/config.yaml", "配置文件路径")
	root.SetOut(out)

	root.AddCommand(
		a.serveCmd(),
		a.configCmd(),
		a.setTaskCmd(),
		a.setStrategyCmd(),
		a.tasksCmd(),
		a.strategiesCmd(),
		a.runCmd(),
		a.resultsCmd(),
		a.compareCmd(),
		a.historyCmd(),
		a.deleteHistoryCmd(),
		a.logsCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.statusCmd(),
		a.healthCmd(),
		a.dataCmd(),
	)
	return root
}

// Execute main 调用
func Execute() {
	root := NewRootCmd(nil)
	if err := root.Execute(); err != nil {
		errorf(os.Stderr, "%s", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := logger.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	if err := db.InitDB(cfg); err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	shutdown, err := tracing.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("初始化链路追踪失败: %w", err)
	}
	a.shutdown = shutdown
	a.svcCtx = svc.NewServiceContext(cfg)
	return nil
}

// close 刷出剩余 span
func (a *app) close() error {
	if a.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.shutdown(ctx)
}

// store CLI 每次命令一个独立快照
func (a *app) store() *store.Store {
	return a.svcCtx.NewStore("cli")
}

func (a *app) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动仪表盘 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.svcCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.svcCtx.Sessions.Start(ctx)
			defer a.svcCtx.Sessions.CloseAll()

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
				Handler: router.SetupRouter(a.svcCtx),
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Logger.Info().Str("addr", srv.Addr).Str("api", cfg.API.BaseURL).Msg("服务启动")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("启动服务失败: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Logger.Info().Msg("正在关闭服务")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口（覆盖配置）")
	return cmd
}
