package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/store"
)

var importContactCmd = &cobra.Command{
	Use:   "import-contact <file> <alias>",
	Short: "Import a contact's public key exported via export-key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, alias := args[0], args[1]

		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		pub, err := identity.ImportPublic(strings.TrimSpace(string(raw)))
		if err != nil {
			return err
		}
		nodeID := identity.NodeIDFromPublicKey(pub)

		st, err := openStoreForCommand()
		if err != nil {
			return err
		}
		defer st.Close()

		contact := store.Contact{
			NodeID:           nodeID,
			Alias:            alias,
			PublicSigningKey: strings.TrimSpace(string(raw)),
			Trust:            store.TrustVerified,
		}
		if err := st.UpsertContact(contact); err != nil {
			return err
		}

		fmt.Printf("Imported contact: %s (%s)\n", alias, nodeID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importContactCmd)
}
