package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// connectCmd dials a peer's known listen address directly. Peer
// discovery (mDNS, DHT) is an external collaborator's job per spec §1;
// this is the manual substitute that exercises WSTransport.Dial against
// a peer whose address was exchanged out-of-band.
var connectCmd = &cobra.Command{
	Use:   "connect <ws-address>",
	Short: "Dial a peer's listen address directly and hold the session open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := args[0]

		st, eng, tr, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, listenAddr, stop, err := runSession(eng, tr)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Printf("Listening on %s\n", listenAddr)

		if err := tr.Dial(ctx, addr, eng.SelfNodeID()); err != nil {
			return fmt.Errorf("dialing %s: %w", addr, err)
		}
		fmt.Printf("Connected to %s\n", addr)
		fmt.Println("Press Ctrl+C to disconnect...")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		fmt.Println("Disconnecting...")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
