// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import "os"

// Environment reads and writes variables for the environment and echon built-ins.
type Environment interface {
	Get(name string) (string, bool)
	Set(name, value string) (previous string, err error)
}

// OSEnvironment is the process environment.
type OSEnvironment struct{}

// Get returns the value of name and whether it is set.
func (OSEnvironment) Get(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Set assigns value to name and returns the previous value.
func (OSEnvironment) Set(name, value string) (string, error) {
	prev := os.Getenv(name)
	return prev, os.Setenv(name, value)
}
