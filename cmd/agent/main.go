package main

import "github.com/pointme/resilience/internal/cli"

func main() {
	cli.Execute()
}
