// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cilium/ksnoop/cmd/ksnoop/common"
	"github.com/cilium/ksnoop/pkg/version"
)

const examples = `  # Print the version
  ksnoop version

  # Get build info
  ksnoop version --build`

var build bool

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		Example: examples,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ksnoop version: %s\n", version.Version)
			if build {
				version.ReadBuildInfo().Print(cmd.OutOrStdout())
			}
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&build, common.KeyBuild, "b", false, "Show build info")
	return cmd
}
