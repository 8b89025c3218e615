// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package option

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/logger"
)

// Config contains all the configuration used by ksnoop.
var Config = config{
	// Initialize global defaults below.

	// ProcFS defaults to /proc.
	ProcFS: defaults.DefaultProcFS,

	LogOpts: logger.DefaultLogOptions(),
}

type config struct {
	Debug     bool
	ProcFS    string
	KsnoopLib string
	BTF       string
	ModuleBTF string
	Color     string

	// SignatureCacheSize is the number of function signatures the
	// resolver keeps.
	SignatureCacheSize int

	LogOpts logger.LogOptions
}

// ReadDirConfig reads a configuration directory holding one file per
// option: the file name is the key and its trimmed content the value.
// Hidden files and sub-directories are skipped.
func ReadDirConfig(dirName string) (map[string]interface{}, error) {
	entries, err := os.ReadDir(dirName)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory %s: %w", dirName, err)
	}

	settings := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fname := filepath.Join(dirName, e.Name())
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", fname, err)
		}
		settings[e.Name()] = strings.TrimSpace(string(data))
	}
	return settings, nil
}
