// Package config loads the runtime configuration of the interpreter: the
// optional HCL config file (log, router and vars), the optional YAML vars
// file and `name=<json>` assignments given on the command line.
//
// The `config.Model` is format-agnostic; the HCL loader is one Loader
// implementation producing it.
package config
