// Package config holds the scraper's explicit configuration.
//
// Values are resolved in order: struct defaults, BOXSCORES_* environment
// variables, an optional YAML file, then command-line flags applied by the
// cli package. The result is validated before use; nothing downstream reads
// the environment.
package config
