// Command moim is the terminal client for the Moim service.
package main

import "github.com/moimlabs/moim-go/cmd/moim/cmd"

func main() {
	cmd.Execute()
}
