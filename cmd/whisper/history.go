package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/delivery"
	"github.com/sudokatie/whisper/store"
)

var (
	historySince     string
	historyLimit     int
	historyExport    string
	historyMergeFile string
	historyDiffIDs   string
)

var historyCmd = &cobra.Command{
	Use:   "history <alias>",
	Short: "Reconcile local message history with a contact, for catch-up after a reconnect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alias := args[0]

		st, err := openStoreForCommand()
		if err != nil {
			return err
		}
		defer st.Close()

		contact, err := st.GetContactByAlias(alias)
		if err != nil {
			return fmt.Errorf("contact %q not found", alias)
		}

		local, err := st.MessagesBetween(contact.NodeID, 0)
		if err != nil {
			return err
		}

		since := time.Time{}
		if historySince != "" {
			since, err = time.Parse(time.RFC3339, historySince)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
		}
		view := delivery.FilterHistory(local, delivery.HistoryRequest{Since: since, Limit: historyLimit})

		if historyMergeFile != "" {
			remote, err := readHistoryFile(historyMergeFile)
			if err != nil {
				return err
			}
			view = delivery.MergeHistory(view, remote)
		}

		if historyDiffIDs != "" {
			remoteIDs := strings.Split(historyDiffIDs, ",")
			missing := delivery.DiffMissing(view, remoteIDs)
			fmt.Printf("%s is missing %d message(s):\n", alias, len(missing))
			for _, m := range missing {
				printHistoryEntry(m)
			}
			return nil
		}

		if historyExport != "" {
			if err := writeHistoryFile(historyExport, view); err != nil {
				return err
			}
			fmt.Printf("Exported %d message(s) to %s\n", len(view), historyExport)
			return nil
		}

		for _, m := range view {
			printHistoryEntry(m)
		}
		return nil
	},
}

func printHistoryEntry(m store.MessageLogEntry) {
	marker := ""
	if delivery.NeedsSync(m) {
		marker = " [pending sync]"
	}
	fmt.Printf("  [%s] %s: %s%s\n", m.Timestamp.Format(time.RFC3339), m.Status, m.Content.Text, marker)
}

func readHistoryFile(path string) ([]store.MessageLogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var entries []store.MessageLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

func writeHistoryFile(path string, entries []store.MessageLogEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "only show messages after this RFC3339 timestamp")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "cap the number of messages shown (0 = unbounded)")
	historyCmd.Flags().StringVar(&historyExport, "export", "", "write the filtered history as JSON to this file, for a peer to merge")
	historyCmd.Flags().StringVar(&historyMergeFile, "merge", "", "merge a peer's exported history JSON file into the local view")
	historyCmd.Flags().StringVar(&historyDiffIDs, "diff-ids", "", "comma-separated msg_ids a peer already has; prints what it's still missing")
	rootCmd.AddCommand(historyCmd)
}
