package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"GachaSync/internal/service"

	"github.com/spf13/cobra"
)

var (
	runAction   string
	runGame     string
	runDataFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single action and print the JSON response",
	Long: `Run executes one action the same way POST /api/actions does and prints the response.

Example:
  gachasync run --action scrape_and_sync --game honkai_star_rail
  gachasync run --action sync_from_source --game genshin_impact --data records.json`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runAction, "action", "", "action name, e.g. scrape_and_sync")
	runCmd.Flags().StringVar(&runGame, "game", "", "genshin_impact or honkai_star_rail")
	runCmd.Flags().StringVar(&runDataFile, "data", "", "JSON file used as the request data")
	_ = runCmd.MarkFlagRequired("action")
}

func runOnce(cmd *cobra.Command, args []string) error {
	req := service.ActionRequest{Action: runAction, Game: runGame}
	if runDataFile != "" {
		raw, err := os.ReadFile(runDataFile)
		if err != nil {
			return fmt.Errorf("读取数据文件失败: %w", err)
		}
		if !json.Valid(raw) {
			return fmt.Errorf("数据文件不是合法JSON: %s", runDataFile)
		}
		req.Data = raw
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	// 日志走stderr，stdout只输出响应
	logger.SetOutput(os.Stderr)

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.sync.RunAction(cmd.Context(), req)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化响应失败: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if !resp.Success {
		return errors.New("action did not succeed")
	}
	return nil
}
