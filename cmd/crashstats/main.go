package main

import (
	"github.com/jverbeke/go-crashstats/internal/cli"
)

func main() {
	cli.Execute()
}
