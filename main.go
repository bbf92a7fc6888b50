package main

import "github.com/ris3abh/ResumeForgeAI/cmd"

func main() {
	cmd.Execute()
}
