package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/store"
)

// keypairFile is the identity file's fixed name within --data-dir (spec §6).
const keypairFile = "identity.key"

func keypairPath(dir string) string {
	return filepath.Join(dir, keypairFile)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new local identity and vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := resolvePassphrase()
		if err != nil {
			return err
		}

		keyPath := keypairPath(dataDir)
		kp, err := identity.Create(keyPath, pass)
		if err != nil {
			return err
		}

		st, err := store.Open(dataDir, pass)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println("Identity created!")
		fmt.Printf("Node ID: %s\n", kp.NodeID())
		fmt.Printf("Public Key: %s\n", kp.ExportPublic())
		fmt.Printf("Saved to: %s\n", keyPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
