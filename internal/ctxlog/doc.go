// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger built on log/slog.
//
// The level is taken from the NIGHTSHELL_LOG_LEVEL environment variable
// (DEBUG, INFO, WARN or ERROR, default WARN). The default handler is a pretty
// console handler writing to stderr.
package ctxlog
