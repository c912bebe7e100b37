package main

import "github.com/atikulmunna/tally/internal/cmd"

func main() {
	cmd.Execute()
}
