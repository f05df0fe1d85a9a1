// Package config loads runtime configuration for the Verixa CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. VERIXA_SERVER_URL and VERIXA_REQUEST_TIMEOUT environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the auth server
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "request_timeout": "10s"
//	}
package config
