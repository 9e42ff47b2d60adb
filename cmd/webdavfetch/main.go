// Command webdavfetch is a small CLI over the webdav-fs library: stat and
// list remote resources, and download a file with resumable, optionally
// chunked transfer.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
