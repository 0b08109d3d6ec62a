package main

import "github.com/pfrederiksen/eventscrape/internal/cli"

func main() {
	cli.Execute()
}
