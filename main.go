package main

import "github.com/hurou927/fide-ratings/cmd"

func main() {
	cmd.Execute()
}
