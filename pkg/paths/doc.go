// Package paths resolves the two roots every run works between: the dotfiles
// tree and the home directory links are created in.
package paths
