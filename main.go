/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/bluess57/gt7core/cmd"

func main() {
	cmd.Execute()
}
