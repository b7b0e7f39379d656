package main

import "github.com/KaramelBytes/raceda/cmd"

func main() {
	cmd.Execute()
}
