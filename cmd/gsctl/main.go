package main

import "github.com/mcoot/gamesessions/internal/cli"

func main() {
	cli.Execute()
}
