package main

import "github.com/raysh454/proxyview/cmd"

func main() {
	cmd.Execute()
}
