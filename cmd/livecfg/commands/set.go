package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Write a value into the config file",
	Long: `Write a value at a dotted path. The value is parsed as JSON when
possible ('true', '3', '{"a": 1}') and treated as a string otherwise.
Comments and formatting elsewhere in the file are preserved.`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
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

	return s.Set(p, parseValue(args[1]))
}
