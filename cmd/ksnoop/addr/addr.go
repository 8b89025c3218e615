// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package addr

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cilium/ksnoop/cmd/ksnoop/common"
	"github.com/cilium/ksnoop/pkg/ksyms"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/option"
)

const examples = `  # Symbolize an address from a perf stack trace
  ksnoop addr 0xffffffffa870f925

  # Several addresses at once
  ksnoop addr 0xffffffffa870f925 0xffffffffa8a0008c`

func New() *cobra.Command {
	return &cobra.Command{
		Use:     "addr ADDR...",
		Short:   "Print the function and offset of kernel addresses",
		Example: examples,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ksyms.NewKsyms(option.Config.ProcFS)
			if err != nil {
				return err
			}
			logger.GetLogger().Debugf("symbol table covers %d modules", len(table.Modules()))

			for _, arg := range args {
				addr, err := common.ParseAddr(arg)
				if err != nil {
					return err
				}
				loc, err := table.Symbolize(addr)
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "addr 0x%x: %s\n", addr, loc)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "addr 0x%x: error: %s\n", addr, err)
				}
			}
			return nil
		},
	}
}
