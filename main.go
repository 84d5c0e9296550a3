package main

import "github.com/icco/jukebox/cmd"

func main() {
	cmd.Execute()
}
