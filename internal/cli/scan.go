package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist"
)

func newScanCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "scan [dir...]",
		Short: "Discover plugins and print their metadata without loading them",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = cfg.PluginDirs
			}

			m := hoist.New(hoist.WithLogger(log))
			defer m.Close()

			found := false
			for _, dir := range dirs {
				err := m.SearchForPlugins(dir, recursive || cfg.Recursive, func(err error, detail string) {
					log.Warn().Err(err).Str("detail", detail).Msg("search problem")
				})
				if err == nil {
					found = true
				}
			}
			if !found {
				return fmt.Errorf("no plugins found in %v", dirs)
			}

			for _, name := range m.PluginsList() {
				fmt.Println(m.PluginInfo(name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "scan subdirectories")
	return cmd
}
