package main

import "uvbump/internal/cli"

func main() {
	cli.Execute()
}
