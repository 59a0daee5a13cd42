/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/Franklyn101/sagbama-land-authentication/cmd"

func main() {
	cmd.Execute()
}
