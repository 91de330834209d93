package main

import "github.com/orlandopunx/eventsync/internal/cli"

func main() {
	cli.Execute()
}
