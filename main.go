package main

import "github.com/shouni/web-ai-chat-go/cmd"

func main() {
	cmd.Execute()
}
