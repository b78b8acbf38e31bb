// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandregistry

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/spf13/afero"
)

// DefaultCommands are registered by New before anything else.
var DefaultCommands = []string{"help", "version", "exit", "clear"}

// FsFactory returns the filesystem used when scanning PATH.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Registry is an insertion-ordered sequence of command names.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	names []string
}

// New returns a registry seeded with DefaultCommands followed by names.
func New(names ...string) *Registry {
	r := &Registry{names: make([]string, 0, 32)}
	r.Register(DefaultCommands...)
	r.Register(names...)

	return r
}

// Register appends names in order. Duplicates are kept.
func (r *Registry) Register(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range names {
		if n == "" {
			continue
		}

		r.names = append(r.names, n)
	}
}

// Contains reports whether name was registered exactly.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Contains(r.names, name)
}

// Complete returns up to limit names starting with prefix, in registration order.
func (r *Registry) Complete(prefix string, limit int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string

	for _, n := range r.names {
		if len(out) >= limit {
			break
		}

		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}

	return out
}

// Names returns a copy of every registered name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.names)
}

// Len returns the number of registered names, duplicates included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}

// Reset releases the registered names.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = nil
}

// ScanPath registers every executable regular file found in the directories of
// pathList. A name already present in the registry, or seen earlier in the scan,
// is skipped so that /bin and /usr/bin do not double every suggestion.
// Unreadable directories are logged and ignored. It returns the number added.
func (r *Registry) ScanPath(ctx context.Context, pathList string) int {
	fs := FsFactory()
	seen := make(map[string]struct{})

	for _, n := range r.Names() {
		seen[n] = struct{}{}
	}

	added := 0

	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}

		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			ctxlog.Debug(ctx, "skipping PATH entry", "dir", dir, "error", err)
			continue
		}

		for _, e := range entries {
			if _, ok := seen[e.Name()]; ok {
				continue
			}

			if !isExecutable(e) {
				continue
			}

			seen[e.Name()] = struct{}{}
			r.Register(e.Name())
			added++
		}
	}

	ctxlog.Debug(ctx, "scanned PATH for commands", "added", added)

	return added
}

func isExecutable(fi os.FileInfo) bool {
	return fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0
}
