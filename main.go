package main

import "github.com/chriserin/comb/cmd"

func main() {
	cmd.Execute()
}
