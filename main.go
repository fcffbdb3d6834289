package main

import "github.com/Rorical/CodeAssist/cmd"

func main() {
	cmd.Execute()
}
