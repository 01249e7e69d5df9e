package main

import "initium/cmd/client/cmd"

func main() {
	cmd.Execute()
}
