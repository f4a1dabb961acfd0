package main

import "github.com/ethpandaops/logdedup/cmd"

func main() {
	cmd.Execute()
}
