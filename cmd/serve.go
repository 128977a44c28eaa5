package cmd

import (
	"fmt"
	"lingua_backend/internal/app"
	"lingua_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
}

func runServe(cmd *cobra.Command) error {
	cfg, dir, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ForceMigrate, _ = cmd.Flags().GetBool("migrate")

	application := app.NewApp(cfg, dir)
	defer logger.Log.Sync()

	return application.Run()
}
