package main

import "github.com/pitwall/pitstream/cmd"

func main() {
	cmd.Execute()
}
