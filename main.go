package main

import "github.com/archlens/archlens/cmd"

func main() {
	cmd.Execute()
}
