// Package config loads runtime configuration for the bea command-line client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the e-book API
//	-t int      request timeout (seconds)
//	-m int      largest file the client will try to upload (bytes)
//	-dir string session directory under the working directory
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "30s",
//	  "max_file_size": 104857600,
//	  "session_dir": ".bea"
//	}
package config
