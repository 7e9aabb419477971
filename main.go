package main

import "github.com/pinpt/ichurn/cmd"

func main() {
	cmd.Execute()
}
