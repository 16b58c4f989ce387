package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/identity"
)

var exportKeyCmd = &cobra.Command{
	Use:   "export-key",
	Short: "Print this identity's public key for out-of-band exchange",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := resolvePassphrase()
		if err != nil {
			return err
		}

		kp, err := identity.Unlock(keypairPath(dataDir), pass)
		if err != nil {
			return err
		}

		fmt.Println(kp.ExportPublic())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportKeyCmd)
}
