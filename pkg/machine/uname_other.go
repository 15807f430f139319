//go:build !unix

package machine

func uname() (sysname, release string) {
	return "", ""
}
