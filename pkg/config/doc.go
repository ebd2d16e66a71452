// Package config loads the intentgraph configuration.
//
// Configuration is a TOML file whose ${VAR} references are expanded from the
// environment before decoding. Every value has a default, so [Default] alone
// is a working configuration and a file only needs the keys it changes:
//
//	[log]
//	level = "debug"
//
//	[layout]
//	orientation = "columnar"
//	width = 1200
//	height = 800
//
//	[store]
//	backend = "sqlite"
//	namespace = "alice"
//
//	[store.sqlite]
//	path = "${HOME}/.local/share/intentgraph/intentgraph.db"
//
//	[extract]
//	url = "https://extractor.example.com/v1/extract"
//	timeout = "20s"
//
// Each section validates itself with ozzo-validation; [Load] and [Parse]
// reject a configuration that fails validation.
package config
