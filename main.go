package main

import "github.com/agentic-research/flowdef/cmd"

func main() {
	cmd.Execute()
}
