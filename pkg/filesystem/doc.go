// Package filesystem provides the file-system interface the linker inspects
// targets through, and its OS implementation.
package filesystem
