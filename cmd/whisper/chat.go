package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <alias>",
	Short: "Start an interactive chat session with a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Interactive chat not yet implemented")
		fmt.Println("Use 'whisper send <alias> <text>' for now")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
