package main

import (
	"fmt"
	"os"

	"github.com/crucial707/postboard/cmd/cli/auth"
	"github.com/crucial707/postboard/cmd/cli/posts"
	"github.com/crucial707/postboard/cmd/cli/root"
	"github.com/crucial707/postboard/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	posts.InitPosts(rootCmd)
	users.InitUsers(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
