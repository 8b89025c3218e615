// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package option

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/logger"
)

const (
	KeyConfigDir = "config-dir"
	KeyDebug     = "debug"
	KeyKsnoopLib = "bpf-lib"
	KeyBTF       = "btf"
	KeyModuleBTF = "module-btf-dir"
	KeyProcFS    = "procfs"
	KeyColor     = "color"

	KeySignatureCacheSize = "signature-cache-size"

	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
)

func ReadAndSetFlags() error {
	Config.KsnoopLib = viper.GetString(KeyKsnoopLib)
	Config.BTF = viper.GetString(KeyBTF)
	Config.ModuleBTF = viper.GetString(KeyModuleBTF)
	Config.ProcFS = viper.GetString(KeyProcFS)
	Config.Debug = viper.GetBool(KeyDebug)
	Config.Color = viper.GetString(KeyColor)

	Config.SignatureCacheSize = viper.GetInt(KeySignatureCacheSize)
	if Config.SignatureCacheSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeySignatureCacheSize, Config.SignatureCacheSize)
	}

	logOpts, err := logger.ParseLogOptions(viper.GetString(KeyLogLevel), viper.GetString(KeyLogFormat))
	if err != nil {
		return err
	}
	Config.LogOpts = logOpts
	return nil
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(KeyConfigDir, "", "Configuration directory that contains a file for each option")
	flags.BoolP(KeyDebug, "d", false, "Enable debug messages. Equivalent to '--log-level=debug'")
	flags.String(KeyKsnoopLib, defaults.DefaultKsnoopLib, "Location of ksnoop libs (btf files)")
	flags.String(KeyBTF, "", "Location of vmlinux btf")
	flags.String(KeyModuleBTF, defaults.DefaultModuleBTFDir, "Directory holding kernel module btf")
	flags.String(KeyProcFS, defaults.DefaultProcFS, "Location of procfs to read kallsyms from")
	flags.String(KeyColor, "auto", "Colorize text output. one of: auto (default), always, never")
	flags.Int(KeySignatureCacheSize, defaults.DefaultSignatureCacheSize, "Number of function signatures kept in memory")
	flags.String(KeyLogLevel, "warning", "Set log level")
	flags.String(KeyLogFormat, "text", "Set log format")
}
