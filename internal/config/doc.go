// Package config loads and validates the chainspectd YAML configuration.
//
// Load applies defaults for absent fields, then validates structural
// constraints (ascending breakpoints, usable lag counts, non-empty run
// definitions). Watch re-loads the file on write events so alert-rule and
// webhook changes take effect without a restart; a failed reload keeps the
// previous configuration active.
package config
