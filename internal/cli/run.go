package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist"
	"github.com/hoistdev/hoist/internal/events"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load all configured plugins and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []hoist.Option{hoist.WithLogger(log)}
			if cfg.MainPlugin != "" {
				opts = append(opts, hoist.WithMainPlugin(cfg.MainPlugin))
			}
			m := hoist.New(opts...)
			defer m.Close()

			m.Events().On(events.EventLoadError, "cli", func(p events.Payload) error {
				log.Warn().Err(p.Err).Str("plugin", p.Plugin).Msg("plugin failed to load")
				return nil
			})

			found := false
			for _, dir := range cfg.PluginDirs {
				err := m.SearchForPlugins(dir, cfg.Recursive, func(err error, detail string) {
					log.Warn().Err(err).Str("detail", detail).Msg("search problem")
				})
				if err == nil {
					found = true
				}
			}
			if !found {
				return fmt.Errorf("no plugins found in %v", cfg.PluginDirs)
			}

			if err := m.LoadPlugins(*cfg.TryToContinue, nil); err != nil {
				return fmt.Errorf("load plugins: %w", err)
			}
			log.Info().Strs("order", m.LoadOrder()).Msg("all plugins loaded")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			log.Info().Msg("shutting down")
			return m.UnloadPlugins(nil)
		},
	}
}
