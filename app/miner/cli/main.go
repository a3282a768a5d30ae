package main

import "github.com/ardanlabs/blockledger/app/miner/cli/cmd"

func main() {
	cmd.Execute()
}
