// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/robera-dev/guide-tui/internal/cache"
)

// HandleCache manages the repository analysis cache.
func HandleCache(args []string) {
	p := NewArgParser(args)
	cfg := loadConfig(p)

	pos := p.Positional()
	sub := ""
	if len(pos) > 0 {
		sub = pos[0]
	}

	switch sub {
	case "purge", "clear":
		store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			Fatal(err)
		}
		defer store.Close()

		n, err := store.Purge(context.Background())
		if err != nil {
			Fatal(err)
		}
		fmt.Printf("purged %d cached repositories\n", n)

	case "path":
		fmt.Println(cfg.Cache.Path)

	default:
		Fatal(fmt.Errorf("usage: guide cache <purge|path>"))
	}
}
