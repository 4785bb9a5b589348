package posts

import (
	"fmt"
	"strconv"

	"github.com/crucial707/postboard/cmd/cli/client"
	"github.com/crucial707/postboard/cmd/cli/output"
	"github.com/crucial707/postboard/internal/models"
	"github.com/spf13/cobra"
)

// InitPosts registers the posts command group.
func InitPosts(rootCmd *cobra.Command) {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage your posts",
	}
	postsCmd.AddCommand(listPostsCmd(), createPostCmd(), deletePostCmd())
	rootCmd.AddCommand(postsCmd)
}

func listPostsCmd() *cobra.Command {
	var fresh, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your posts",
		Long:  "List your posts. The server may answer from a short-lived cache; --fresh bypasses it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/posts"
			if fresh {
				path += "?fresh=true"
			}

			var items []models.Post
			if err := client.Call("GET", path, true, nil, &items); err != nil {
				return fmt.Errorf("failed to list posts: %w", err)
			}

			if asJSON {
				return output.PrintJSON(items)
			}
			rows := make([][]interface{}, 0, len(items))
			for _, p := range items {
				rows = append(rows, []interface{}{p.ID, p.Text})
			}
			output.RenderTable([]string{"ID", "Text"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Bypass the server-side cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func createPostCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("text") {
				return fmt.Errorf("--text is required")
			}

			var resp struct {
				ID int `json:"id"`
			}
			if err := client.Call("POST", "/posts", true, map[string]string{"text": text}, &resp); err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created post %d\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Post text")

	return cmd
}

func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			if err := client.Call("DELETE", "/posts/"+strconv.Itoa(id), true, nil, nil); err != nil {
				return fmt.Errorf("failed to delete post %d: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %d\n", id)
			return nil
		},
	}
}
