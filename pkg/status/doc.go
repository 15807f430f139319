// Package status compares the planned links of a dotfiles tree with what
// is on disk, without changing anything.
package status
