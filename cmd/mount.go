// Copyright 2024 Google LLC
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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jacobsa/daemonize"
	"github.com/jacobsa/fuse"
	"github.com/kardianos/osext"
	"github.com/khanhtranngoccva/easy-fuser/cfg"
	"github.com/khanhtranngoccva/easy-fuser/fs"
	"github.com/khanhtranngoccva/easy-fuser/fs/mirrorfs"
	"github.com/khanhtranngoccva/easy-fuser/fs/resolver"
	"github.com/khanhtranngoccva/easy-fuser/internal/logger"
)

const (
	successfulMountMessage         = "File system has been successfully mounted."
	unsuccessfulMountMessagePrefix = "Error mounting file system"

	parentProcessDirEnvVar  = "EASY_FUSER_PARENT_PROCESS_DIR"
	backgroundModeMarkerEnv = "EASY_FUSER_BACKGROUND_MODE"
)

// runMount is the single entry point cmd.rootCmd's RunE delegates to once
// flags/config-file/env have been merged into a rationalized, validated
// cfg.Config. It either re-execs itself in the background (daemonize) or
// mounts directly in the foreground, grounded on the teacher's own
// legacy_main.go runCmd: daemonize-then-signal-outcome for the parent/child
// split, direct mount for the foreground path.
func runMount(sourceDir, mountPoint string, config *cfg.Config) error {
	if !config.Foreground {
		return runAsDaemon(mountPoint)
	}

	if err := logger.InitLogFile(config.Logging); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}

	logger.Infof("Starting %s mount of %s at %s", config.AppName, sourceDir, mountPoint)

	mfs, err := doMount(sourceDir, mountPoint, config)
	if os.Getenv(backgroundModeMarkerEnv) == "true" {
		callDaemonizeSignalOutcome(err)
	}
	if err != nil {
		logger.Errorf("%s: %v", unsuccessfulMountMessagePrefix, err)
		return fmt.Errorf("%s: %w", unsuccessfulMountMessagePrefix, err)
	}
	logger.Infof(successfulMountMessage)

	if err := mfs.Join(context.Background()); err != nil {
		return fmt.Errorf("MountedFileSystem.Join: %w", err)
	}
	return nil
}

// callDaemonizeSignalOutcome reports the mount outcome back to the daemonize
// parent, logging rather than propagating a failure to do so: a signaling
// failure shouldn't mask the real mount error.
func callDaemonizeSignalOutcome(err error) {
	if err2 := daemonize.SignalOutcome(err); err2 != nil {
		logger.Errorf("Failed to signal outcome to parent process: %v", err2)
	}
}

// runAsDaemon re-execs the current binary with --foreground as its first argument, using
// daemonize.Run to wait for the child to either mount successfully or fail,
// forwarding the handful of environment variables a re-exec'd child needs
// (PATH so fusermount/mount helpers resolve, HOME, and proxy variables for
// handlers that reach out over the network), grounded on legacy_main.go's
// own daemonization block.
func runAsDaemon(mountPoint string) error {
	path, err := osext.Executable()
	if err != nil {
		return fmt.Errorf("osext.Executable: %w", err)
	}

	args := append([]string{"--foreground"}, os.Args[1:]...)
	args[len(args)-1] = mountPoint

	env := []string{fmt.Sprintf("PATH=%s", os.Getenv("PATH"))}

	for _, name := range []string{"https_proxy", "http_proxy", "no_proxy"} {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, fmt.Sprintf("%s=%s", name, v))
		}
	}

	if wd, err := os.Getwd(); err == nil {
		env = append(env, fmt.Sprintf("%s=%s", parentProcessDirEnvVar, wd))
	}

	if home, err := os.UserHomeDir(); err == nil {
		env = append(env, fmt.Sprintf("HOME=%s", home))
	}

	env = append(env, fmt.Sprintf("%s=true", backgroundModeMarkerEnv))

	if err := daemonize.Run(path, args, env, os.Stdout); err != nil {
		return fmt.Errorf("daemonize.Run: %w", err)
	}
	fmt.Fprintln(os.Stdout, successfulMountMessage)
	return nil
}

// doMount wraps fs.Mount, translating cfg.Config into fs.MountOptions and a
// PathResolver/MirrorFs pair, mirroring the shape of the teacher's
// mountWithStorageHandle minus anything bucket-specific.
func doMount(sourceDir, mountPoint string, config *cfg.Config) (*fuse.MountedFileSystem, error) {
	mirrorFs := mirrorfs.New(sourceDir, config.FileSystem.ReadOnly)
	mirrorFs.TTL = time.Duration(config.MetadataCache.TtlSecs) * time.Second

	mfs, err := fs.Mount[string, struct{}](
		mountPoint,
		resolver.NewPathResolver(),
		mirrorFs,
		fs.MountOptions{
			FSName:               "easy-fuser",
			Subtype:              "easy-fuser",
			VolumeName:           config.AppName,
			ReadOnly:             config.FileSystem.ReadOnly,
			EnableParallelDirOps: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("fs.Mount: %w", err)
	}
	return mfs, nil
}
