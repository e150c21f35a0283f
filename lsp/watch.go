/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package lsp

import (
	"path/filepath"

	"gren-lsp.dev/server/internal/platform"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp/helpers"
)

// startWatcher watches the workspace tree for .gren file changes made
// outside any open editor buffer — external edits, git checkouts,
// gren-package installs — and keeps the Symbol Index in sync with them.
// Files the client currently has open are left alone; didChange already
// keeps their rows current and racing the two would only thrash the index.
//
// A missing workspace root, or a platform that can't start an fsnotify
// watcher (e.g. inotify limits exhausted), degrades to index-at-startup-only
// rather than failing the server.
func (s *Server) startWatcher() {
	if s.workspace == nil || s.workspace.Root() == "" {
		return
	}

	fw, err := platform.NewFSNotifyFileWatcher()
	if err != nil {
		helpers.SafeDebugLog("watcher: failed to start: %v", err)
		return
	}
	s.watcher = fw

	addWatchDirs(fw, s.fs, s.workspace.Root())
	go s.watchLoop(fw)
}

// addWatchDirs registers dir and its non-excluded subdirectories with fw.
// fsnotify watches are not recursive, so every directory needs its own Add.
func addWatchDirs(fw platform.FileWatcher, fs platform.FileSystem, dir string) {
	if err := fw.Add(dir); err != nil {
		return
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch entry.Name() {
		case "gren_packages", ".gren-lsp", ".git":
			continue
		}
		addWatchDirs(fw, fs, filepath.Join(dir, entry.Name()))
	}
}

func (s *Server) watchLoop(fw platform.FileWatcher) {
	for {
		select {
		case event, ok := <-fw.Events():
			if !ok {
				return
			}
			s.handleWatchEvent(event)
		case err, ok := <-fw.Errors():
			if !ok {
				return
			}
			helpers.SafeDebugLog("watcher: %v", err)
		}
	}
}

func (s *Server) handleWatchEvent(event platform.FileWatchEvent) {
	if filepath.Ext(event.Name) != ".gren" {
		return
	}
	uri := workspace.PathToURI(event.Name)
	if s.documents.Get(uri) != nil {
		return
	}

	if event.Op&(platform.Remove|platform.Rename) != 0 {
		if err := s.indexer.RemoveFile(s.ctx, event.Name, s.index); err != nil {
			helpers.SafeDebugLog("watcher: purge %s: %v", uri, err)
		}
		return
	}
	if event.Op&(platform.Create|platform.Write) != 0 {
		if !s.indexer.IndexFile(s.ctx, event.Name, s.index) {
			helpers.SafeDebugLog("watcher: failed to index %s", event.Name)
		}
	}
}
