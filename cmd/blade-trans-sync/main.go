package main

import "blade-trans-sync/internal/cli"

func main() {
	cli.Execute()
}
