// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: state/watch.go
// Summary: Hot-reloads the config file so layers pick up changes live.

package state

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/framegrace/scrim/config"
	"github.com/framegrace/scrim/protocol"
)

// ConfigFilename is the name of the config file inside the config directory.
const ConfigFilename = "scrim.toml"

// ConfigFilePath returns the full path of the user's config file.
func (s *State) ConfigFilePath() string {
	return filepath.Join(s.ConfigDir(), ConfigFilename)
}

// WatchConfig blocks, reloading the config file whenever it changes on disk
// and announcing each reload on the control bus. The whole config directory
// is watched because editors often replace files by rename. Returns when ctx
// is cancelled.
func (s *State) WatchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("state: starting config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.ConfigDir()); err != nil {
		return fmt.Errorf("state: watching %s: %w", s.ConfigDir(), err)
	}

	path := s.ConfigFilePath()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := config.Load(path)
			if err != nil {
				log.Printf("State: config reload failed: %v", err)
				s.Notify("Config reload failed", LevelWarning, err.Error(), false)
				continue
			}
			s.SetConfig(cfg)
			s.Protocol.Send(protocol.ConfigReloaded{})
			log.Printf("State: reloaded config from %s", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("State: config watcher: %v", err)
		}
	}
}
