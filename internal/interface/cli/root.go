package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/kaiwa/internal/app/config"
	infraConfig "github.com/YoshitsuguKoike/kaiwa/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kaiwa",
		Short: "Interactive AI agent session CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs
			// Priority: setting.yaml > ENV > defaults
			baseDir := ".kaiwa"
			if home := os.Getenv("KAIWA_HOME"); home != "" {
				baseDir = home
			}

			cfg, err := infraConfig.LoadSettings(baseDir)
			if err != nil {
				// Continue with defaults if loading fails
				cfg = config.NewAppConfig(
					".kaiwa", "claude-cli", "claude", 600,
					3, 1000, true,
					"warn", "default", "",
				)
			}
			globalConfig = cfg
			InitGlobalLogger(globalConfig.StderrLevel())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
