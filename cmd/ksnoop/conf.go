// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/option"
)

var configFile = defaults.DefaultConfigName + ".yaml"

func readConfigFile(path string, file string) error {
	filePath := filepath.Join(path, file)
	st, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("failed to read config file '%s' not a regular file", file)
	}

	viper.AddConfigPath(path)
	return viper.MergeInConfig()
}

func readConfigDir(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("'%s' is not a directory", path)
	}

	cm, err := option.ReadDirConfig(path)
	if err != nil {
		return err
	}
	if err := viper.MergeConfigMap(cm); err != nil {
		return fmt.Errorf("merge config failed %w", err)
	}
	return nil
}

// readConfigSettings layers, from lowest to highest priority: ./ksnoop.yaml,
// <defaultConfDir>/ksnoop.yaml and the --config-dir directory. Environment
// variables (KSNOOP_BTF, ...) and flags win over all of them.
func readConfigSettings(defaultConfDir string) {
	viper.SetEnvPrefix("ksnoop")
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	viper.SetConfigName(defaults.DefaultConfigName)
	viper.SetConfigType("yaml")

	// Look into cwd first, this is needed for quick development only
	readConfigFile(".", configFile)

	// Look for /etc/ksnoop/ksnoop.yaml
	readConfigFile(defaultConfDir, configFile)

	// Read now the passed key --config-dir
	if viper.IsSet(option.KeyConfigDir) {
		configDir := viper.GetString(option.KeyConfigDir)
		// viper.IsSet could return true on an empty string reset
		if configDir != "" {
			err := readConfigDir(configDir)
			if err != nil {
				log.WithField(option.KeyConfigDir, configDir).WithError(err).Fatal("Failed to read config from directory")
			} else {
				log.WithField(option.KeyConfigDir, configDir).Info("Loaded config from directory")
			}
		}
	}
}
