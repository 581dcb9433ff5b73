//go:build windows

package goldie

import "bytes"

// golden files are checked out with \n, output written on windows may carry \r\n.
func normalizeLineEndings(actual []byte) []byte {
	return bytes.ReplaceAll(actual, []byte("\r\n"), []byte("\n"))
}
