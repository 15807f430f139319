// Package testutil provides helpers for tests that need a real dotfiles
// tree and a home directory.
//
// Every Environment lives under t.TempDir() and sets HOME and the XDG
// variables for the duration of the test, so tests never touch the
// developer's real home or log files.
package testutil
