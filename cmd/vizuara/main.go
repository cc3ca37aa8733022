package main

import "github.com/VihaanShinde10/Vizuara2/internal/cli"

func main() {
	cli.Main()
}
