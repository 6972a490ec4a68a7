package cli

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	agentgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/agent"
	toolgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/tool"
	"github.com/YoshitsuguKoike/kaiwa/internal/adapter/presenter/console"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/dto"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/service"
	"github.com/YoshitsuguKoike/kaiwa/internal/interface/cli/session"
)

func newChatCmd() *cobra.Command {
	var degraded bool
	var agentType string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive agent session",
		Long: `Start an interactive agent session in rich mode.

When an unrecoverable critical fault occurs, the session switches once to
a minimal fallback mode that keeps working without the rich components.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalConfig
			logger := GetLogger()
			if agentType == "" {
				agentType = cfg.AgentType()
			}

			handler := service.NewFaultHandler(service.HandlerConfig{
				MaxRetries: cfg.MaxRetries(),
				RetryDelay: cfg.RetryDelay(),
				LogErrors:  cfg.LogErrors(),
				StateDir:   cfg.Home(),
			}, console.New(os.Stderr, false), logger)

			tools := toolgw.NewGateway(afero.NewOsFs())
			ctx := cmd.Context()

			gw, err := agentgw.NewAgentGateway(agentType, cfg.AgentBin(), cfg.Timeout())
			if err != nil {
				// Startup failures escalate immediately; keep the user
				// productive with the offline backend in fallback mode.
				handler.HandleInitialization(ctx, err, "agent startup")
				gw = agentgw.NewMockGateway()
				degraded = true
			}

			if !degraded {
				rich := session.NewRichSession(gw, tools, handler)
				if !rich.Run(ctx) {
					return nil
				}
			}

			handler.UpdateDegradedConfig(dto.FullDegradation())
			deg := session.NewDegradedSession(gw, tools, handler, handler.GetDegradedConfig())
			return deg.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&degraded, "degraded", false, "start directly in fallback mode")
	cmd.Flags().StringVar(&agentType, "agent", "", "agent backend (claude-cli, openai, mock)")
	return cmd
}
