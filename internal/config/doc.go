// Package config loads technician's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/technician/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - Service root: http://127.0.0.1:8080/odata/ESPM.svc/
//   - Entity set: Products
//   - Offline cache: ~/.local/share/technician
//   - Log file: ~/.local/state/technician/technician.log
//   - KPI poll interval: 30s
//   - List load timeout: 30s
//
// # TOML Format
//
//	service_url = "https://espm.example.com/odata/ESPM.svc/"
//	entity_set = "Products"
//	username = "tech"
//	password = ""                # or TECHNICIAN_PASSWORD
//	cache_dir = "~/.local/share/technician"
//	log_file = "~/.local/state/technician/technician.log"
//	kpi_interval_seconds = 30
//	load_timeout_seconds = 30
//	offline = false
//
//	[strings]
//	keyOkButtonTitle = "OK"
//	keyErrorLoadingData = "Loading data failed!"
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute. The TECHNICIAN_PASSWORD environment variable takes precedence
// over the password key so secrets can stay out of the file.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files and invalid TOML are
// returned wrapped ("open config", "read config", "parse config").
package config
