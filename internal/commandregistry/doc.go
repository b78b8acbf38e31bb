// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandregistry keeps the insertion-ordered list of command names the
// line editor uses for prefix completion and for highlighting valid commands.
// Names are never deduplicated by the registry itself.
package commandregistry
