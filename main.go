/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/darkstoreops/approval-api/cmd"

func main() {
	cmd.Execute()
}
