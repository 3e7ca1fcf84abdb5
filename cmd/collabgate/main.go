package main

import "github.com/ppiankov/collabgate/internal/cli"

func main() {
	cli.Execute()
}
