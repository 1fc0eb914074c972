package main

import "rivals-scout/internal/cli"

func main() {
	cli.Execute()
}
