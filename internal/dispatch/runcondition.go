// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import "github.com/matt-FFFFFF/nightshell/internal/tokenizer"

// RunCondition defines when a segment runs based on the status of the previous one.
type RunCondition int

const (
	// RunOnAlways means the segment runs regardless of the previous status.
	RunOnAlways RunCondition = iota
	// RunOnSuccess means the segment runs only if the previous status was 0.
	RunOnSuccess
	// RunOnError means the segment runs only if the previous status was not 0.
	RunOnError
)

const (
	runOnSuccessStr = "success"
	runOnErrorStr   = "error"
	runOnAlwaysStr  = "always"
	runOnUnknownStr = "unknown"
)

// String returns the string representation of the RunCondition.
func (r RunCondition) String() string {
	switch r {
	case RunOnSuccess:
		return runOnSuccessStr
	case RunOnError:
		return runOnErrorStr
	case RunOnAlways:
		return runOnAlwaysStr
	default:
		return runOnUnknownStr
	}
}

// ConditionFor maps the operator preceding a segment to its RunCondition.
func ConditionFor(op tokenizer.Operator) RunCondition {
	switch op {
	case tokenizer.OpAnd:
		return RunOnSuccess
	case tokenizer.OpOr:
		return RunOnError
	default:
		return RunOnAlways
	}
}

// ShouldRun reports whether a segment with this condition runs after a
// segment that finished with status.
func (r RunCondition) ShouldRun(status int) bool {
	switch r {
	case RunOnSuccess:
		return status == 0
	case RunOnError:
		return status != 0
	default:
		return true
	}
}
