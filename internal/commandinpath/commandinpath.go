// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves a command name to an executable path by
// searching the PATH environment variable.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no executable matches the name.
var ErrNotFound = errors.New("command not found")

// FsFactory returns the filesystem searched for executables.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Find returns the path of the executable called command. A name containing a
// path separator is checked as is; otherwise every directory of pathList is
// searched in order.
func Find(command, pathList string) (string, error) {
	if command == "" {
		return "", ErrNotFound
	}

	fs := FsFactory()

	if strings.ContainsRune(command, os.PathSeparator) {
		if isExecutable(fs, command) {
			return command, nil
		}

		return "", fmt.Errorf("%w: %s", ErrNotFound, command)
	}

	for _, p := range filepath.SplitList(pathList) {
		if p == "" {
			p = "."
		}

		candidate := filepath.Join(p, command)
		if isExecutable(fs, candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, command)
}

func isExecutable(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode()&0o111 != 0
}
