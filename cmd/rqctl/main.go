package main

import "github.com/mcoot/rightsquest/internal/cli"

func main() {
	cli.Execute()
}
