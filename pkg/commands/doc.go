// Package commands groups the command implementations behind the CLI.
//
// Each command lives in its own subdirectory:
//   - apply/  - link pass over all, regular or override entries
//   - add/    - move a home file into the tree and link it back
//   - remove/ - delete a managed file and its link
//   - status/ - classify every planned link without changing anything
//   - internal/ - session setup shared by the commands
package commands
