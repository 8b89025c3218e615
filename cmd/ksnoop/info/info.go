// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package info

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cilium/ksnoop/cmd/ksnoop/common"
)

const examples = `  # Show the prototype, address and module of a function
  ksnoop info ip_send_skb

  # As JSON
  ksnoop info -o json tcp_sendmsg nft_do_chain`

var output string

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info FUNC...",
		Short:   "Print kernel function prototypes",
		Example: examples,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := common.NewEncoder(cmd, output)
			if err != nil {
				return err
			}
			r, err := common.NewResolver()
			if err != nil {
				return err
			}

			var errs error
			for _, name := range args {
				fn, err := r.Info(name)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				if err := enc.Encode(fn); err != nil {
					return err
				}
			}
			return errs
		},
	}
	common.AddOutputFlag(cmd, &output)
	return cmd
}
