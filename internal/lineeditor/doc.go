// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lineeditor reads a line of keyboard input one byte at a time with the
// terminal in raw mode. It redraws the line after every edit, highlighting the
// command word by registry membership, and lists prefix completions on tab.
//
// When standard input is not a terminal, Piped provides a plain line reader.
package lineeditor
