package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breezy-team/breezy-sub003/compact"
	"github.com/breezy-team/breezy-sub003/dirstate"
	"github.com/breezy-team/breezy-sub003/internal/config"
)

func newScanCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Snapshot a tree and report how its keys are shared",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				v.Set(config.KeyScanRoot, args[0])
			}
			c, err := config.Resolve(v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			before := compact.PoolStats()

			st, err := dirstate.Scan(cmd.Context(), c.Root,
				dirstate.WithWorkers(c.Workers),
				dirstate.WithIgnoreFile(c.IgnoreFile))
			if err != nil {
				return err
			}

			stats := st.Stats()
			pool := compact.PoolStats()
			fmt.Fprintf(out, "root:     %s\n", st.Root())
			fmt.Fprintf(out, "files:    %d in %d dirs, %d bytes\n", stats.Files, stats.Dirs, stats.Bytes)
			fmt.Fprintf(out, "keys:     %d held, %d pooled\n", 2*stats.Files, pool.Used-before.Used)
			printPool(out, "pool:", pool)

			if !c.Release {
				return nil
			}

			st.Release()
			if err := compact.Shrink(); err != nil {
				return err
			}
			printPool(out, "released:", compact.PoolStats())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int("workers", 0, "files digested at once (default GOMAXPROCS)")
	flags.String("ignore-file", "", "ignore file name in the root (default .bzrignore)")
	flags.Bool("release", false, "release the snapshot and report the pool afterwards")
	mustBind(v.BindPFlag(config.KeyScanWorkers, flags.Lookup("workers")))
	mustBind(v.BindPFlag(config.KeyScanIgnoreFile, flags.Lookup("ignore-file")))
	mustBind(v.BindPFlag(config.KeyReportRelease, flags.Lookup("release")))

	return cmd
}
