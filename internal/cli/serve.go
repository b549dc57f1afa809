// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robera-dev/guide-tui/internal/server"
)

// HandleServe runs the backend gateway server until interrupted.
func HandleServe(args []string) {
	p := NewArgParser(args)
	cfg := loadConfig(p)

	port := cfg.Server.Port
	if v := p.Flag("port"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 65535 {
			Fatal(fmt.Errorf("invalid port %q", v))
		}
		port = n
	}

	vendor, err := server.NewOpenAIVendor(cfg.Server.VendorKey, cfg.Server.VendorBaseURL, cfg.Server.Model)
	if err != nil {
		Fatal(err)
	}

	srv := server.NewServer(port, vendor)

	// Graceful shutdown on interrupt.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.Start(); err != nil {
		Fatal(err)
	}
}
