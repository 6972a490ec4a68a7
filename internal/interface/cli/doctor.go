package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	agentgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/agent"
	"github.com/YoshitsuguKoike/kaiwa/internal/adapter/presenter/console"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/service"
)

func newDoctorCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment kaiwa needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalConfig
			handler := service.NewFaultHandler(service.HandlerConfig{
				MaxRetries: 1,
				RetryDelay: 0,
				LogErrors:  cfg.LogErrors(),
				StateDir:   cfg.Home(),
			}, console.New(os.Stderr, false), GetLogger())

			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed).SprintFunc()
			out := cmd.OutOrStdout()
			healthy := true
			ctx := cmd.Context()

			fmt.Fprintf(out, "%s config loaded (source: %s)\n", ok("✓"), cfg.ConfigSource())

			if err := checkHomeWritable(afero.NewOsFs(), cfg.Home()); err != nil {
				// The default file system strategy recreates the state dir
				if handler.HandleFileSystem(ctx, err, "home dir") {
					fmt.Fprintf(out, "%s home dir %s recreated\n", ok("✓"), cfg.Home())
				} else {
					fmt.Fprintf(out, "%s home dir %s not writable\n", bad("✗"), cfg.Home())
					healthy = false
				}
			} else {
				fmt.Fprintf(out, "%s home dir %s writable\n", ok("✓"), cfg.Home())
			}

			agentType := cfg.AgentType()
			if offline {
				agentType = "mock"
			}
			gw, err := agentgw.NewAgentGateway(agentType, cfg.AgentBin(), cfg.Timeout())
			if err == nil {
				hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				err = gw.HealthCheck(hctx)
				cancel()
			}
			if err != nil {
				handler.HandleInitialization(ctx, err, "agent health check")
				fmt.Fprintf(out, "%s agent %s unavailable: %v\n", bad("✗"), agentType, err)
				healthy = false
			} else {
				fmt.Fprintf(out, "%s agent %s reachable\n", ok("✓"), agentType)
			}

			if !healthy {
				if f := handler.LastFault(); handler.ShouldEscalate(f) {
					fmt.Fprintln(out, "kaiwa chat would start in fallback mode")
				}
				return fmt.Errorf("doctor found problems")
			}
			fmt.Fprintln(out, "all checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "check against the offline mock backend")
	return cmd
}

// checkHomeWritable verifies the state directory accepts writes
func checkHomeWritable(fs afero.Fs, home string) error {
	if err := fs.MkdirAll(home, 0755); err != nil {
		return err
	}
	probe := filepath.Join(home, ".doctor_probe")
	if err := afero.WriteFile(fs, probe, []byte("ok"), 0644); err != nil {
		return err
	}
	return fs.Remove(probe)
}
