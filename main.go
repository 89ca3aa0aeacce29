package main

import "github.com/shaharia-lab/stocknotify/cmd"

func main() {
	cmd.Execute()
}
