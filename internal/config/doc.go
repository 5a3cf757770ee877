// Package config loads, validates, and normalizes the daycounter TOML
// configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/daycounter/config.toml, then a daycounter.toml in the working
// directory. A missing file is not an error: defaults apply so the tool works
// out of the box. All path fields are tilde-expanded and absolute after Load.
package config
