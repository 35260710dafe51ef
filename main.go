package main

import "decision-console/internal/cli"

func main() {
	cli.Execute()
}
