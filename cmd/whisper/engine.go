package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sudokatie/whisper/delivery"
	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/metrics"
	"github.com/sudokatie/whisper/store"
	"github.com/sudokatie/whisper/transport"
)

// openSession unlocks the identity and vault, and builds a delivery
// engine over a fresh WebSocket transport. The transport itself is not
// bound to a listener until runSession starts it.
func openSession() (*store.Store, *delivery.Engine, *transport.WSTransport, error) {
	pass, err := resolvePassphrase()
	if err != nil {
		return nil, nil, nil, err
	}

	kp, err := identity.Unlock(keypairPath(dataDir), pass)
	if err != nil {
		return nil, nil, nil, err
	}
	enc, err := identity.DeriveEncryptionKeys(kp)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.Open(dataDir, pass)
	if err != nil {
		return nil, nil, nil, err
	}

	tr := transport.NewWSTransport()
	eng := delivery.New(st, tr, kp, enc, nil)
	return st, eng, tr, nil
}

// runSession starts eng's event loop in the background and binds the
// WebSocket transport's Handler behind a real listener on all IPv4
// interfaces, on an ephemeral port unless overridden by config (spec
// §6: "the transport binds on all IPv4 interfaces on an ephemeral
// port"). When metrics are enabled in config, /metrics is served on the
// same listener rather than opening a second port. It returns the
// working context, the bound address, and a function that stops
// everything. Use for any command that calls Submit or Invite, or that
// reports live peer connectivity.
func runSession(eng *delivery.Engine, tr *transport.WSTransport) (context.Context, string, func(), error) {
	listenAddr := "0.0.0.0:0"
	if cfg != nil && cfg.Network != nil && cfg.Network.ListenAddr != "" {
		listenAddr = cfg.Network.ListenAddr
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, "", nil, fmt.Errorf("binding transport listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", tr.Handler())
	if cfg != nil && cfg.Metrics != nil && cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = eng.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			eng.LogTransportError(err)
		}
	}()

	addr := ln.Addr().String()
	return ctx, addr, func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = tr.Close()
		wg.Wait()
	}, nil
}
