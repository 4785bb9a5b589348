package users

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/crucial707/postboard/cmd/cli/client"
	"github.com/crucial707/postboard/cmd/cli/output"
	"github.com/crucial707/postboard/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Browse users",
	}
	usersCmd.AddCommand(listUsersCmd())
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var sex string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/users"
			if sex != "" {
				path += "?sex=" + url.QueryEscape(strings.ToUpper(sex))
			}

			var items []models.PublicUser
			if err := client.Call("GET", path, true, nil, &items); err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if asJSON {
				return output.PrintJSON(items)
			}
			rows := make([][]interface{}, 0, len(items))
			for _, u := range items {
				rows = append(rows, []interface{}{u.ID, u.Username, u.Sex})
			}
			output.RenderTable([]string{"ID", "Username", "Sex"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&sex, "sex", "", "Only list MALE or FEMALE users")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}
