package main

import "github.com/mvp-joe/cshake/internal/cli"

func main() {
	cli.Execute()
}
