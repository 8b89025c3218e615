// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package trace

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cilium/ksnoop/cmd/ksnoop/common"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/logger/logfields"
	"github.com/cilium/ksnoop/pkg/metrics"
	"github.com/cilium/ksnoop/pkg/metrics/resolvermetrics"
	"github.com/cilium/ksnoop/pkg/tracespec"
	"github.com/cilium/ksnoop/pkg/version"
)

const examples = `  # Capture skb->len on entry to ip_send_skb when it is above 128 and the return value
  ksnoop trace "ip_send_skb(skb->len > 128, return)"

  # Every argument and the return value
  ksnoop trace tcp_sendmsg

  # Only tcp_sendmsg calls made under sock_sendmsg by process 1234
  ksnoop trace --stack --pid 1234 sock_sendmsg tcp_sendmsg

  # Specifications from a file, as YAML, with metrics for the node exporter
  ksnoop trace -f specs.yaml -o yaml --metrics-file /var/lib/node_exporter/ksnoop.prom`

var (
	output      string
	specFile    string
	metricsFile string
	stack       bool
	pid         uint32
)

func registerMetrics() {
	group := metrics.NewMetricsGroup()
	resolvermetrics.RegisterMetrics(group)
	group.MustRegister(version.NewBuildInfoCollector())
	metrics.GetRegistry().MustRegister(group)
	group.Init()
}

// collectSpecs merges positional specifications with the ones from the
// spec file.
func collectSpecs(args []string, file string) ([]string, error) {
	specs := append([]string(nil), args...)
	if file != "" {
		fromFile, err := tracespec.ReadFile(file)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}
	if len(specs) == 0 {
		return nil, errors.New("no trace specification given")
	}
	return specs, nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trace SPEC...",
		Short:   "Resolve trace specifications into attach plans",
		Example: examples,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := collectSpecs(args, specFile)
			if err != nil {
				return err
			}
			enc, err := common.NewEncoder(cmd, output)
			if err != nil {
				return err
			}

			if metricsFile != "" {
				registerMetrics()
				defer func() {
					if werr := metrics.WriteTextfile(metricsFile); werr != nil {
						logger.GetLogger().WithError(werr).WithField(logfields.File, metricsFile).Warn("Failed to write metrics")
					}
				}()
			}

			r, err := common.NewResolver()
			if err != nil {
				return err
			}

			traces, err := r.ResolvePlan(specs, tracespec.PlanOptions{Stack: stack, Pid: pid})
			for _, e := range multierr.Errors(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			for _, t := range traces {
				if eerr := enc.Encode(t); eerr != nil {
					return eerr
				}
			}
			if err != nil {
				return fmt.Errorf("%d of %d specifications failed", len(specs)-len(traces), len(specs))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	common.AddOutputFlag(cmd, &output)
	flags.StringVarP(&specFile, common.KeySpecFile, "f", "", "YAML file holding a list of specifications under 'specs'")
	flags.StringVar(&metricsFile, common.KeyMetricsFile, "", "Write resolution metrics to this file in the prometheus text format")
	flags.BoolVarP(&stack, common.KeyStack, "s", false, "Chain the functions: each one is only traced while the ones before it are on the call stack")
	flags.Uint32VarP(&pid, common.KeyPid, "p", 0, "Only trace this process")
	return cmd
}
