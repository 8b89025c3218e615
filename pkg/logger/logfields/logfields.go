// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package logfields

const (
	// LogSubsys is the field denoting the subsystem when logging
	LogSubsys = "subsys"

	// Error is the Go error
	Error = "error"

	// Function is the traced kernel function
	Function = "function"

	// Module is the kernel module owning a function, empty for vmlinux
	Module = "module"

	// BTFFile is the path of a BTF blob
	BTFFile = "btf-file"

	// File is a path written or read by ksnoop
	File = "file"

	// Spec is a textual trace specification
	Spec = "spec"

	// Value is the display name of a bound value
	Value = "value"
)
