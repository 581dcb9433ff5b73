package main

import "github.com/unitecms/contentgraph/cmd"

func main() {
	cmd.Execute()
}
