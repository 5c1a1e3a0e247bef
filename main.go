package main

import (
	"github.com/oxblood/sweeper/cmd"
)

func main() {
	cmd.Execute()
}
