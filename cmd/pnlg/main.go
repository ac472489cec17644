package main

import "github.com/ogulcanaydogan/PnL-Guardian/internal/cli"

func main() {
	cli.Execute()
}
