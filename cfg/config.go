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

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully parsed, validated and rationalized configuration for
// a mount of this framework. It is filled in from flags and/or a config
// file by the cmd package, whose doMount builds fs.MountOptions and a
// mirrorfs.MirrorFs from it.
type Config struct {
	AppName string `yaml:"app-name"`

	// Foreground keeps the mount process attached to the terminal. When
	// false, Execute re-execs itself in the background via daemonize and
	// this flag is forced true in the child.
	Foreground bool `yaml:"foreground"`

	Debug DebugConfig `yaml:"debug"`

	FileSystem FileSystemConfig `yaml:"file-system"`

	Logging LoggingConfig `yaml:"logging"`

	MetadataCache MetadataCacheConfig `yaml:"metadata-cache"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	LogMutex bool `yaml:"log-mutex"`
}

// FileSystemConfig holds the attributes a generic inode namespace reports
// for every file/directory it serves, absent any backend-specific metadata.
type FileSystemConfig struct {
	FileMode Octal `yaml:"file-mode"`

	DirMode Octal `yaml:"dir-mode"`

	Uid int `yaml:"uid"`

	Gid int `yaml:"gid"`

	// RenameDirLimit is carried in the config but not read anywhere in
	// this module; renames are not limited by it.
	RenameDirLimit int64 `yaml:"rename-dir-limit"`

	// ReadOnly rejects every mutating handler operation with EROFS.
	ReadOnly bool `yaml:"read-only"`
}

// LoggingConfig controls where and how this mount logs.
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	Format string `yaml:"format"`

	FilePath ResolvedPath `yaml:"file-path"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

// LogRotateLoggingConfig mirrors the knobs lumberjack.Logger exposes.
type LogRotateLoggingConfig struct {
	MaxFileSizeMb int `yaml:"max-file-size-mb"`

	BackupFileCount int `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`
}

// MetadataCacheConfig governs how long resolver/dispatcher lookups are
// allowed to be cached by the kernel before a fresh GetAttr is required.
type MetadataCacheConfig struct {
	// TtlSecs is the cache TTL in seconds. -1 means cache forever, 0
	// disables caching, and any unset value falls back to DefaultTtlSecs.
	TtlSecs int64 `yaml:"ttl-secs"`

	// StatCacheMaxSizeMb must be -1 (unbounded) or more;
	// IsMetadataCacheEnabled reports caching off when it is 0. This module
	// keeps no in-process attribute cache for it to bound.
	StatCacheMaxSizeMb int64 `yaml:"stat-cache-max-size-mb"`
}

func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("app-name", "", "", "The application name of this mount.")

	err = viper.BindPFlag("app-name", flagSet.Lookup("app-name"))
	if err != nil {
		return err
	}

	flagSet.BoolP("foreground", "", false, "Stay in the foreground instead of daemonizing.")

	err = viper.BindPFlag("foreground", flagSet.Lookup("foreground"))
	if err != nil {
		return err
	}

	flagSet.BoolP("debug_invariants", "", false, "Exit when internal invariants are violated.")

	err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug_invariants"))
	if err != nil {
		return err
	}

	flagSet.BoolP("debug_mutex", "", false, "Print debug messages when a mutex is held too long.")

	err = viper.BindPFlag("debug.log-mutex", flagSet.Lookup("debug_mutex"))
	if err != nil {
		return err
	}

	flagSet.IntP("file-mode", "", 0755, "Permissions bits for files, in octal.")

	err = viper.BindPFlag("file-system.file-mode", flagSet.Lookup("file-mode"))
	if err != nil {
		return err
	}

	flagSet.IntP("dir-mode", "", 0755, "Permissions bits for directories, in octal.")

	err = viper.BindPFlag("file-system.dir-mode", flagSet.Lookup("dir-mode"))
	if err != nil {
		return err
	}

	flagSet.IntP("uid", "", -1, "UID owner of all inodes. -1 means the mounting user.")

	err = viper.BindPFlag("file-system.uid", flagSet.Lookup("uid"))
	if err != nil {
		return err
	}

	flagSet.IntP("gid", "", -1, "GID owner of all inodes. -1 means the mounting user's primary group.")

	err = viper.BindPFlag("file-system.gid", flagSet.Lookup("gid"))
	if err != nil {
		return err
	}

	flagSet.BoolP("read-only", "", false, "Mount the file system read-only, rejecting all mutating operations.")

	err = viper.BindPFlag("file-system.read-only", flagSet.Lookup("read-only"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", string(InfoLogSeverity), "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")

	err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Logging output format: text or json.")

	err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to the log file. Empty means stdout.")

	err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file"))
	if err != nil {
		return err
	}

	flagSet.Int64P("stat-cache-ttl-secs", "", unsetTtlSecs, "Metadata cache TTL in seconds. Omit to use the default.")

	err = viper.BindPFlag("metadata-cache.ttl-secs", flagSet.Lookup("stat-cache-ttl-secs"))
	if err != nil {
		return err
	}

	return nil
}
