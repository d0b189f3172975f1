package main

import "github.com/KaramelBytes/bizlens-cli/cmd"

func main() {
	cmd.Execute()
}
