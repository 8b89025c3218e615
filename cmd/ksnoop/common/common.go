// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cilium/ksnoop/pkg/btf"
	"github.com/cilium/ksnoop/pkg/encoder"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/logger/logfields"
	"github.com/cilium/ksnoop/pkg/option"
	"github.com/cilium/ksnoop/pkg/tracespec"
)

const (
	KeyOutput      = "output"       // string
	KeySpecFile    = "file"         // string
	KeyMetricsFile = "metrics-file" // string
	KeyBuild       = "build"        // bool
	KeyStack       = "stack"        // bool
	KeyPid         = "pid"          // uint32
)

// NewResolver builds a resolver from the global configuration: the vmlinux
// BTF found by btf.FindBTF, module BTF from the configured directory and
// symbols from procfs/kallsyms.
func NewResolver() (*tracespec.Resolver, error) {
	path, err := btf.FindBTF(option.Config.KsnoopLib, option.Config.BTF)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().WithField(logfields.BTFFile, path).Info("BTF file: using metadata file")

	handle := btf.NewHandle(path)
	if option.Config.ModuleBTF != "" {
		handle.SetModuleDir(option.Config.ModuleBTF)
	}
	return tracespec.NewResolver(handle, tracespec.Options{
		Symbols:   tracespec.ProcFSSymbols(option.Config.ProcFS),
		CacheSize: option.Config.SignatureCacheSize,
	})
}

// NewEncoder returns the encoder selected by --output, writing to the
// command's output.
func NewEncoder(cmd *cobra.Command, output string) (encoder.ObjectEncoder, error) {
	return encoder.New(cmd.OutOrStdout(), output, encoder.ColorMode(option.Config.Color))
}

// AddOutputFlag registers --output on cmd.
func AddOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, KeyOutput, "o", encoder.FormatText,
		fmt.Sprintf("Output format. one of: %s, %s, %s", encoder.FormatText, encoder.FormatJSON, encoder.FormatYAML))
}

// ParseAddr reads a kernel address, hexadecimal when prefixed with 0x.
func ParseAddr(arg string) (uint64, error) {
	base := 10
	if after, ok := strings.CutPrefix(arg, "0x"); ok {
		arg = after
		base = 16
	}

	addr, err := strconv.ParseUint(arg, base, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing address (base: %d): %w", base, err)
	}
	return addr, nil
}
