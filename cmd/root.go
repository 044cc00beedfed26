// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/khanhtranngoccva/easy-fuser/cfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	MountConfig   cfg.Config
)

// viperDecoderOpt wires cfg's Octal/LogSeverity/ResolvedPath text
// unmarshalers into viper.Unmarshal, the same decode hook BindFlags'
// flags and a YAML config file both need to land on the same Config.
var viperDecoderOpt = viper.DecodeHook(cfg.DecodeHook())

var rootCmd = &cobra.Command{
	Use:   "easy-fuser [flags] source mount_point",
	Short: "Mount a directory-backed inode namespace as a local FUSE filesystem",
	Long: `easy-fuser is a generic FUSE mount framework: it owns the inode
          namespace and dispatch loop, and delegates the actual filesystem
          operations to a pluggable handler (the sample mirrorfs handler
          mirrors a real directory; other handlers back other stores).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := cfg.Rationalize(&MountConfig); err != nil {
			return err
		}
		if err := cfg.ValidateConfig(&MountConfig); err != nil {
			return err
		}
		sourceDir, mountPoint, err := populateArgs(args)
		if err != nil {
			return err
		}
		return runMount(sourceDir, mountPoint, &MountConfig)
	},
}

func populateArgs(args []string) (sourceDir string, mountPoint string, err error) {
	if len(args) != 2 {
		err = fmt.Errorf(
			"%s takes exactly two arguments: source mount_point. Run `%s --help` for more info.",
			path.Base(os.Args[0]),
			path.Base(os.Args[0]))
		return
	}
	sourceDir = args[0]
	mountPoint = args[1]

	// Canonicalize the mount point, making it absolute. This is important when
	// daemonizing below, since the daemon will change its working directory
	// before running this code again.
	mountPoint, err = filepath.Abs(mountPoint)
	if err != nil {
		err = fmt.Errorf("canonicalizing mount point: %w", err)
		return
	}
	return
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to the config-file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&MountConfig, viperDecoderOpt)
		return
	}
	// Use config file from the flag.
	resolvedCfgFile, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("error while resolving config file path: %w", err)
		return
	}
	viper.SetConfigFile(resolvedCfgFile)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&MountConfig, viperDecoderOpt)
}
