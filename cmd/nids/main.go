package main

import (
	"errors"
	"fmt"
	"os"

	"nidscore/config"

	"github.com/spf13/cobra"
)

var version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, msg := range verr.Problems {
				fmt.Fprintln(os.Stderr, msg)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:          "nids",
		Short:        "Signature based network intrusion detection engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level. One of: debug, info, warn, error")

	root.AddCommand(newCheckCmd(&flags))
	root.AddCommand(newReplayCmd(&flags))
	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig loads the configuration named by the flags, or the defaults when no file is given.
func loadConfig(flags *globalFlags, signatureFiles []string) (cfg *config.Main, err error) {
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			return
		}
	} else {
		cfg = config.Default()
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if len(signatureFiles) > 0 {
		cfg.SignatureFiles = signatureFiles
	}

	err = cfg.Validate()
	return
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version=%s\n", version)
		},
	}
}
