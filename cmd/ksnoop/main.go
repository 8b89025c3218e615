// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cilium/ksnoop/cmd/ksnoop/addr"
	"github.com/cilium/ksnoop/cmd/ksnoop/info"
	"github.com/cilium/ksnoop/cmd/ksnoop/trace"
	"github.com/cilium/ksnoop/cmd/ksnoop/version"
	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/option"
)

var (
	log = logger.GetLogger()
)

func main() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ksnoop",
		Short: "Resolve kernel function trace specifications against BTF",
		Long: `ksnoop turns trace specifications such as "ip_send_skb(skb->len > 128, return)"
into offset-exact value descriptors using the kernel BTF and symbol table.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Help()
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			readConfigSettings(defaults.DefaultConfigDir)
			if err := option.ReadAndSetFlags(); err != nil {
				return err
			}
			logger.SetupLogging(option.Config.LogOpts, option.Config.Debug)
			return nil
		},
	}
	// by default, it fallbacks to stderr
	rootCmd.SetOut(os.Stdout)

	rootCmd.AddCommand(
		addr.New(),
		info.New(),
		trace.New(),
		version.New(),
	)

	flags := rootCmd.PersistentFlags()
	option.AddFlags(flags)
	viper.BindPFlags(flags)
	return rootCmd
}
