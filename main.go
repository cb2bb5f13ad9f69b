package main

import "github.com/KaramelBytes/waterborne-cli/cmd"

func main() {
	cmd.Execute()
}
