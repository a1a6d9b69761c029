// Command scanstamp renames scanned documents into date-prefixed,
// human-readable filenames and keeps an undo log of everything it did.
package main

import "github.com/fakeyudi/scanstamp/cmd"

func main() {
	cmd.Execute()
}
