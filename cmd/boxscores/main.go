package main

import "github.com/pfrederiksen/bref-boxscores/internal/cli"

func main() {
	cli.Execute()
}
