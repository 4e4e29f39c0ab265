package main

import "github.com/lepinkainen/tbrdeals/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
