package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/store"
)

// trustGlyph renders a contact's trust level the way the original CLI
// does: a short glyph plus label (spec §6).
func trustGlyph(t store.TrustLevel) string {
	switch t {
	case store.TrustTrusted:
		return "✓ Trusted"
	case store.TrustVerified:
		return "◆ Verified"
	case store.TrustBlocked:
		return "✗ Blocked"
	default:
		return "? Unknown"
	}
}

func openStoreForCommand() (*store.Store, error) {
	pass, err := resolvePassphrase()
	if err != nil {
		return nil, err
	}
	return store.Open(dataDir, pass)
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List known contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStoreForCommand()
		if err != nil {
			return err
		}
		defer st.Close()

		contacts, err := st.ListContacts()
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Println("No contacts yet. Add one with: whisper add <alias> <node_id>")
			return nil
		}

		fmt.Println("Contacts:")
		for _, c := range contacts {
			fmt.Printf("  %s [%s] - %s\n", c.Alias, trustGlyph(c.Trust), c.NodeID)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <alias> <node_id>",
	Short: "Register a contact by alias and node id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alias, nodeID := args[0], args[1]

		st, err := openStoreForCommand()
		if err != nil {
			return err
		}
		defer st.Close()

		contact := store.Contact{NodeID: nodeID, Alias: alias, Trust: store.TrustUnknown}
		if err := st.UpsertContact(contact); err != nil {
			return err
		}

		fmt.Printf("Added contact: %s (%s)\n", alias, nodeID)
		return nil
	},
}

var trustCmd = &cobra.Command{
	Use:   "trust <alias>",
	Short: "Mark a contact as trusted",
	Args:  cobra.ExactArgs(1),
	RunE:  setTrust(store.TrustTrusted, "Marked %s as trusted\n"),
}

var blockCmd = &cobra.Command{
	Use:   "block <alias>",
	Short: "Block a contact",
	Args:  cobra.ExactArgs(1),
	RunE:  setTrust(store.TrustBlocked, "Blocked %s\n"),
}

func setTrust(level store.TrustLevel, successMsg string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		contact.Trust = level
		if err := st.UpsertContact(*contact); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, successMsg, alias)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(contactsCmd, addCmd, trustCmd, blockCmd)
}
