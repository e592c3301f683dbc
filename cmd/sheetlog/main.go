// Command sheetlog records every saved version of the workbooks in a
// directory.
package main

import "github.com/mesh-intelligence/sheetlog/internal/cli"

func main() {
	cli.Execute()
}
