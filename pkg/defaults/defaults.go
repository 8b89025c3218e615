// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package defaults

const (
	// Default kernel exposed BTF file path
	DefaultBTFFile = "/sys/kernel/btf/vmlinux"

	// DefaultModuleBTFDir is the directory holding split BTF of loaded
	// kernel modules, one file per module.
	DefaultModuleBTFDir = "/sys/kernel/btf"

	// Default location for BTF files shipped alongside ksnoop
	DefaultKsnoopLib = "/var/lib/ksnoop/"

	// DefaultProcFS is where procfs, and thus kallsyms, is expected
	DefaultProcFS = "/proc"

	// DefaultConfigDir is the admin configuration directory
	DefaultConfigDir = "/etc/ksnoop/"

	// DefaultConfigName is the configuration file name, without extension
	DefaultConfigName = "ksnoop"

	// DefaultSignatureCacheSize bounds the number of extracted function
	// signatures kept by a resolver
	DefaultSignatureCacheSize = 256

	// DefaultKsymsCacheSize bounds the address to symbol cache
	DefaultKsymsCacheSize = 1024
)
