package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/store"
)

var sendCmd = &cobra.Command{
	Use:   "send <alias> <text>",
	Short: "Send a message to a contact, queuing it if offline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alias, text := args[0], args[1]

		st, eng, tr, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		contact, err := st.GetContactByAlias(alias)
		if err != nil {
			return fmt.Errorf("contact %q not found", alias)
		}

		ctx, addr, stop, err := runSession(eng, tr)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Printf("Listening on %s\n", addr)

		msgID, err := eng.Submit(ctx, store.DirectTo(contact.NodeID), text)
		if err != nil {
			return err
		}

		fmt.Printf("Sending to %s: %s\n", contact.Alias, text)
		fmt.Printf("Message queued (%s) - delivered once %s is online\n", msgID, contact.Alias)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
