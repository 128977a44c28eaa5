package cmd

import (
	"fmt"
	"lingua_backend/internal/app"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and seed the achievement and quest catalogs, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := app.Migrate(cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("数据库迁移完成")
		return nil
	},
}
