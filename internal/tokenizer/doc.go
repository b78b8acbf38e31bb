// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tokenizer splits a shell input line into top-level segments joined by
// the control operators '&', '|' and ';', and splits each segment into argument
// words. Both stages honour single and double quotes.
package tokenizer
