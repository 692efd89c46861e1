package main

import "github.com/jsvs/jsvs/cmd/jsvs"

func main() {
	jsvs.Execute()
}
