// Package linker turns a dotfiles tree into symlinks under $HOME.
//
// A run has two phases. Plan walks the tree, resolves machine overrides
// and computes one LinkTarget per destination path. Run then links every
// target in order, applying the conflict policy whenever a real file or
// directory is in the way, and collects one Result per target into a
// Report. Linking is idempotent: a target already pointing at its source
// is left alone, so re-running after an interrupt is safe.
//
// Host details (hostname, OS, $HOME) are passed in through Options and
// never read from the environment here.
package linker
