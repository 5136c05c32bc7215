/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/osuvault/cmd/osuvault/cmd"

func main() {
	cmd.Execute()
}
