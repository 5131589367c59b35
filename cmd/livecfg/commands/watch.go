package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livecfg/livecfg/internal/event"
	"github.com/livecfg/livecfg/internal/store"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a config file and print its lifecycle events",
	Long: `Open the config file with the watcher enabled and print every
store event (loads, saves, external changes, quarantines) until
interrupted. External edits to the file show up as reloads; a deleted
file is restored from the current state.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 100*time.Millisecond, "Quiet period before reacting to writes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	unsub := event.SubscribeAll(func(e event.Event) {
		data, _ := json.Marshal(e.Data)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			time.Now().Format(time.RFC3339), e.Type, data)
	})
	defer unsub()

	s, err := openStore(store.WithWatch(), store.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}
	defer s.Unload()

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", s.Path())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
