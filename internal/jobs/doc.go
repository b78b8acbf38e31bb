// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jobs implements PID-level job control for the shell.
//
// A Table tracks the single foreground job and an append-only list of
// background jobs addressed by slot index. A Launcher starts child processes
// and records them in the table. A Reaper owns every wait4 call: it is woken
// by SIGCHLD, drains all exited children without blocking and only flips
// finished flags in the table. Announcing finished background jobs is left to
// the main loop through Table.DrainFinished.
package jobs
