package main

import (
	"fmt"
	"os"

	"GachaSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// configDir --config，config.yaml 所在目录
	configDir string
	logLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gachasync",
	Short: "Game banner schedule scraper and sync service",
	Long: `gachasync scrapes banner announcements for Genshin Impact and Honkai: Star Rail,
derives banner windows and versions, and upserts them into PostgreSQL.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, *logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("未知日志级别 %q: %w", logLevel, err)
	}
	logger.SetLevel(level)

	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	logger.Info("配置文件加载成功")
	return cfg, logger, nil
}
