package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print a value from the config file",
	Long: `Print the value at a dotted path, or the whole document when no
path is given. Array elements are addressed by numeric segments,
e.g. 'servers.0.host'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Unload()

	expr := ""
	if len(args) == 1 {
		expr = args[0]
	}
	p, err := parsePath(expr)
	if err != nil {
		return err
	}

	v, ok := s.Value(p)
	if !ok {
		return fmt.Errorf("no value at %q", expr)
	}
	out, err := renderValue(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
