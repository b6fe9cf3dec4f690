package main

import "github.com/ATsirtiris/rag-chatbot/cmd"

func main() {
	cmd.Execute()
}
