package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/configloader"
	"github.com/yaklabco/zkit/internal/ui/pretty"
)

func newEnvCommand() *cobra.Command {
	var setOnly bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "List the environment variables zkit reads",
		Long: `List the ZKIT_* environment variables. They override configuration
files and are overridden by command line flags. Variables set in the
current environment show their value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
			descriptions := configloader.ListEnvVars()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range configloader.EnvVarNames() {
				value, set := os.LookupEnv(name)
				if setOnly && !set {
					continue
				}
				line := styles.CheckID.Render(name) + "\t" + descriptions[name]
				if set {
					line += "\t" + styles.Bold.Render("= "+value)
				}
				fmt.Fprintln(tw, line)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&setOnly, "set", false, "only list variables set in the environment")

	return cmd
}
