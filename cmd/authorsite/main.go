// Command authorsite serves the author website and inspects its content
// and analytics from the terminal.
package main

// version is set at build time via ldflags.
var version = "dev"

func main() {
	Execute()
}
