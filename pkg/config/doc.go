// Package config loads mindmap settings from a TOML file and the environment.
//
// # Sources
//
// Settings are layered, later sources winning:
//
//  1. [Default] values
//  2. The TOML file, by default $XDG_CONFIG_HOME/mindmap/config.toml
//  3. Environment variables: MINDMAP_API_KEY (or GEMINI_API_KEY, API_KEY),
//     MINDMAP_ENDPOINT, MINDMAP_CACHE
//
// A missing file at the default location is not an error. A file named
// explicitly must exist.
//
// # Example
//
//	[api]
//	text_model = "gemini-3-flash-preview"
//	timeout = "60s"
//
//	[render]
//	width = 1200
//	rasterizer = "rsvg"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// # Validation
//
// [Config.Validate] checks struct tags with go-playground/validator. The
// first failure becomes an INVALID_CONFIG error naming the TOML key.
package config
