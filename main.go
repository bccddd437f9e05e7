package main

import "github.com/gaurav-prasanna/cardsync/cmd"

func main() {
	cmd.Execute()
}
