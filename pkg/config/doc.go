// Package config loads the layered configuration of the dotfiles tool.
//
// Layers, lowest precedence first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file $XDG_CONFIG_HOME/dotfiles/config.toml
//  3. <dotfiles root>/.dotfiles.toml
//  4. DOTFILES_<SECTION>_<KEY> environment variables
package config
