package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"GachaSync/internal/api"
	"GachaSync/internal/model"
	"GachaSync/internal/scheduler"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the optional sync schedule",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Sync.Cron != "" {
		games := make([]model.Game, 0, len(cfg.Sync.EnabledGames))
		for _, g := range cfg.Sync.EnabledGames {
			game, _ := model.ParseGame(g)
			games = append(games, game)
		}
		cron, err := scheduler.NewCronSync(cfg.Sync.Cron, games, a.sync, logger)
		if err != nil {
			return err
		}
		cron.Start()
		defer func() {
			if err := cron.Shutdown(); err != nil {
				logger.WithError(err).Warn("停止定时同步失败")
			}
		}()
	}

	router := api.NewRouter(
		cfg.Server.Mode,
		api.NewActionHandler(a.sync, logger),
		api.NewScheduleHandler(a.schedules, a.runs, logger),
	)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("收到退出信号，正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
