package main

import "github.com/buildwithgrove/sequencer-client/cmd/seqctl/cmd"

func main() {
	cmd.Execute()
}
