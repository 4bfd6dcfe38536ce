package main

import "github.com/dbsmedya/cleanaudit/cmd/cleanaudit/cmd"

func main() {
	cmd.Execute()
}
