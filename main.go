package main

import "github.com/theirongolddev/btcplan/cmd"

func main() {
	cmd.Execute()
}
