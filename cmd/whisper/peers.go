package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var peersMetrics bool

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List known peers and their connectivity state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, eng, tr, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		_, addr, stop, err := runSession(eng, tr)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Printf("Listening on %s\n", addr)

		contacts, err := st.ListContacts()
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Println("No known peers yet. Add one with: whisper add <alias> <node_id>")
			return nil
		}

		for _, c := range contacts {
			fmt.Printf("  %s [%s] - %s\n", c.Alias, eng.PeerState(c.NodeID), trustGlyph(c.Trust))
		}

		if peersMetrics {
			printMetricsSnapshot()
		}
		return nil
	},
}

func init() {
	peersCmd.Flags().BoolVar(&peersMetrics, "metrics", false, "also print delivery engine metrics")
	rootCmd.AddCommand(peersCmd)
}
