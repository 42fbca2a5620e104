package main

import "tailor_shop/internal/cmd"

func main() {
	cmd.Execute()
}
