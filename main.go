package main

import (
	"trade-surveillance/internal/cli"
)

func main() {
	cli.Execute()
}
