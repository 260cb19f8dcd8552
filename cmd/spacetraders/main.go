package main

import "github.com/ropable/spacetraders-api/internal/adapters/cli"

func main() {
	cli.Execute()
}
