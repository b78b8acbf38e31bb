// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell wires the line editor, dispatcher and job table into the
// interactive read-dispatch loop and owns shutdown.
package shell
