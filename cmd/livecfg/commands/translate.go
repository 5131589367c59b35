package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livecfg/livecfg/internal/i18n"
	"github.com/livecfg/livecfg/internal/paths"
)

var (
	translateLang string
	translateDir  string
)

var translateCmd = &cobra.Command{
	Use:   "translate <key> [substitution...]",
	Short: "Resolve a translation key",
	Long: `Look a key up in the language dictionaries and substitute the
positional placeholders ({0}, {1}, ...) with the given arguments.
Dictionaries are one file per language code; an unknown key or language
echoes the key back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateLang, "lang", "l", "", "Language code (default: first loaded)")
	translateCmd.Flags().StringVar(&translateDir, "languages", "", "Directory of language files (default: XDG data path)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	dir := translateDir
	if dir == "" {
		dir = paths.Get().LanguagesDir()
	}

	reg := i18n.NewRegistry()
	if err := reg.LoadAll(dir); err != nil {
		return err
	}
	if translateLang != "" {
		reg.Switch(translateLang)
	}

	subs := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		subs = append(subs, a)
	}

	var code []string
	if translateLang != "" {
		code = append(code, translateLang)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reg.Translate(args[0], subs, code...))
	return nil
}
