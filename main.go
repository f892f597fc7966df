package main

import "github.com/niteshrghv/indm/cmd"

func main() {
	cmd.Execute()
}
