package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [signature files...]",
		Short: "Compile signature files and report the signatures that fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "files=%d loaded=%d failed=%d disabled=%d\n",
				a.stats.Files, a.stats.Loaded, a.stats.Failed, a.stats.Disabled)
			if err != nil {
				return err
			}

			if strict && a.stats.Failed > 0 {
				return fmt.Errorf("%d signature(s) failed to compile", a.stats.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any signature does not compile")

	return cmd
}
