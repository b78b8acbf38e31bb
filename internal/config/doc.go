// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the optional YAML configuration file.
// Values not present in the file keep their built-in defaults.
package config
