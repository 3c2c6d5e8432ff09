package main

import "github.com/kozaktomas/amiibo-sheets/cmd"

func main() {
	cmd.Execute()
}
