// Package config manages user-level settings stored at ~/.csmod/config.yaml.
// Every key can also be supplied through a CSMOD_-prefixed environment
// variable, e.g. CSMOD_LIBDIR overrides the catalog's library root.
package config
