package commands

import (
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/livecfg/livecfg/internal/jsontext"
)

var (
	fmtWrite  bool
	fmtDiff   bool
	fmtIndent string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Pretty-print a config file",
	Long: `Normalize a file's indentation while keeping its comments. Values
are untouched; trailing commas are dropped. By default the result goes
to stdout; --write rewrites the file in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Rewrite the file instead of printing")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "Show a diff instead of the full output")
	fmtCmd.Flags().StringVar(&fmtIndent, "indent", "  ", "Indentation unit")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := resolveConfigFile()
	if len(args) == 1 {
		path = args[0]
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := jsontext.Format(src, jsontext.Options{Indent: fmtIndent})
	if err != nil {
		return fmt.Errorf("format %s: %w", path, err)
	}

	switch {
	case fmtDiff:
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(src), string(out), false)
		if len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual {
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), dmp.DiffPrettyText(diffs))
	case fmtWrite:
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, out, info.Mode().Perm())
	default:
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	}
	return nil
}
