package main

import "github.com/pders01/git-release/cmd"

func main() {
	cmd.Execute()
}
