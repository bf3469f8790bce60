package main

import (
	"os"

	"cfgc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
