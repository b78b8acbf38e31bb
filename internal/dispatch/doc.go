// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch evaluates an input line. Segments joined by operators run
// left to right: "a & b" runs b only if a succeeded, "a | b" runs b only if a
// failed, and "a ; b" always runs b. A final "&" with nothing after it, or a
// trailing "&" word, runs the last command in the background.
//
// The first word of each segment names a built-in or an external command.
package dispatch
