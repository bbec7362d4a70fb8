// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for carchive.
//
// Configuration comes from a single file named by either the
// CARCHIVE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Without either,
// the command runs on [Default].
//
// A file only needs the fields it changes; everything else keeps its
// default:
//
//	reader:
//	  max_section_size: 67108864
//	log:
//	  level: debug
//	  file: ${HOME}/carchive.log
//	progress:
//	  interval: 1s
//
// The log file path supports ${VAR} and ${VAR:-default} expansion. No
// other environment variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- master struct with Reader, Log, Progress, Decode
//   - [Default] -- the built-in configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Limits] -- reader limits for lib/carreader
package config
