// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides functions to determine if color output is enabled
// and to colorize strings with ANSI escape codes. Colour names from the
// shell configuration ("red", "bold", ...) are mapped to codes with Parse.
//
// The NO_COLOR and FORCE_COLOR environment variables are honoured; otherwise
// colour is enabled only when stdout is a terminal.
package color
