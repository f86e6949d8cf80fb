package main

import "github.com/funvibe/pyhint/pkg/cli"

func main() {
	cli.Run()
}
