// Package main provides the CLI entrypoint for popui.
package main

func main() {
	Execute()
}
