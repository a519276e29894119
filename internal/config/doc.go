// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation, so credentials can live in the environment or a local .env
// file instead of the YAML itself.
package config
