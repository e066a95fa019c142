package main

import "github.com/theirongolddev/harmony/cmd"

func main() {
	cmd.Execute()
}
