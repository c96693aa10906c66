// Package config loads the dashboard's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/meteodash/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - API: the Toulouse Métropole explore v2.1 datasets root, 30s timeout
//   - Data directory: ~/.local/share/meteodash/data
//   - Station catalog: ~/.config/meteodash/stations.csv
//   - Log directory: ~/.local/share/meteodash/logs (level info)
//   - Dashboard tick: 500ms, never below 50ms
//   - Task queue capacity: 64
//   - Display date layout: 2006-01-02 15:04
//
// # Example
//
//	api_url = "https://data.toulouse-metropole.fr/api/explore/v2.1/catalog/datasets/"
//	api_timeout = 30
//	data_dir = "~/weather"
//	log_level = "debug"
//	poll_ms = 250
//
//	[validation.temperature]
//	min = -30.0
//	max = 50.0
//
// Validation tables override one or both bounds of the default range for
// temperature, humidity or pressure. Unknown metric names and inverted ranges
// are errors.
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute. Parse errors are wrapped with "parse config:".
package config
