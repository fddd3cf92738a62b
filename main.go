package main

import "github.com/dzeleniak/orbitpipe/cmd"

func main() {
	cmd.Execute()
}
