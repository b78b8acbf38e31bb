// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prompt renders the shell prompt from a format string.
//
// Recognised placeholders:
//
//	%u  user name
//	%d  last element of the working directory
//	%w  full working directory
//	%s  prompt symbol ("#" for root, "$" otherwise, unless configured)
//	%%  a literal percent sign
//
// Any other "%x" is emitted unchanged.
package prompt
