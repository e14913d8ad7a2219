// Command bookctl is a terminal client for the ResidentBook API. It keeps the
// signed-in session on disk so consecutive invocations share it.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
