package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/displayctl/internal/ipc"
	"github.com/1broseidon/displayctl/internal/listener"
)

func runListen(args []string) int {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl listen [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Watch for monitor hotplug events in the foreground. When the connected")
		fmt.Fprintln(os.Stderr, "set changes, the layout picker opens; when only the internal panel is")
		fmt.Fprintln(os.Stderr, "left, its layout is applied without prompting.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "listen takes no arguments")
		fs.Usage()
		return 2
	}

	d, err := buildDeps(*path, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := d.log

	conn, err := listener.Connect()
	if err != nil {
		log.Error("x connection failed", "error", err)
		return 1
	}
	defer conn.Close()

	l := listener.New(d.engine, d.notifier, log)

	ipcServer, err := ipc.NewServer(d.engine, log, func() bool { return true })
	if err != nil {
		log.Error("ipc server setup failed", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Error("ipc server start failed", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutting down", "signal", sig.String())
		cancel()
		// WaitForEvent only returns once the connection drops.
		conn.Close()
	}()

	log.Info("listening for hotplug events")
	if err := conn.Run(ctx, l); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("listener stopped", "error", err)
		return 1
	}
	return 0
}
