// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// File is the on-disk form of a list of trace specifications:
//
//	specs:
//	  - "ip_send_skb(skb->len > 128)"
//	  - "tcp_sendmsg(size, return)"
type File struct {
	Specs []string `json:"specs"`
}

// ReadFile loads the specifications listed in a YAML (or JSON) file.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(data)
}

func ParseFile(data []byte) ([]string, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: spec file: %w", ErrInvalidSyntax, err)
	}
	return f.Specs, nil
}
