package main

import "github.com/mcoot/multitetris/internal/cli"

func main() {
	cli.Execute()
}
