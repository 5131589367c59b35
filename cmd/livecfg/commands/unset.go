package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unsetCmd = &cobra.Command{
	Use:   "unset <path>",
	Short: "Remove an entry from the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnset,
}

func runUnset(cmd *cobra.Command, args []string) error {
	p, err := parsePath(args[0])
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return fmt.Errorf("a non-empty path is required")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Unload()

	removed, err := s.Remove(p)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not present\n", args[0])
	}
	return nil
}
