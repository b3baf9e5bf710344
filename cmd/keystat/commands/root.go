// package commands implements the keystat command line.
package commands

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breezy-team/breezy-sub003/internal/config"
)

// NewRootCommand builds the keystat command tree. Configuration is read into
// v before any subcommand runs.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "keystat",
		Short:         "Inspect memory sharing of interned tree keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(v, cfgFile); err != nil {
				return err
			}
			level, err := log.ParseLevel(v.GetString(config.KeyLogLevel))
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./keystat.yaml or $HOME/.keystat/keystat.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	mustBind(v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))

	root.AddCommand(newScanCommand(v), newBenchCommand())
	return root
}

// Execute runs keystat with the process arguments.
func Execute() error {
	return NewRootCommand(viper.New()).Execute()
}

func setupLogging(w io.Writer, level log.Level) {
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
}

// mustBind panics on a binding error, which only happens for a nil flag.
func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}
