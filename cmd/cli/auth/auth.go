package auth

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/crucial707/postboard/cmd/cli/client"
	"github.com/crucial707/postboard/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers signup, login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(signupCmd(), loginCmd(), logoutCmd())
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// signupCmd creates an account and stores the returned token.
func signupCmd() *cobra.Command {
	var username, email, sex string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a postboard account",
		Long:  "Create an account, prompting for the password, and store the returned token for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return fmt.Errorf("--username and --email are required")
			}
			sex = strings.ToUpper(sex)
			if sex != "MALE" && sex != "FEMALE" {
				return fmt.Errorf("--sex must be MALE or FEMALE")
			}

			password, err := promptPassword(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var resp tokenResponse
			payload := map[string]string{"username": username, "email": email, "sex": sex, "password": password}
			if err := client.Call("POST", "/signup", false, payload, &resp); err != nil {
				return fmt.Errorf("failed to sign up: %w", err)
			}
			if err := store(resp.AccessToken); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signup successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address for the new account")
	cmd.Flags().StringVar(&sex, "sex", "", "MALE or FEMALE")

	return cmd
}

// loginCmd logs in and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the postboard API",
		Long:  "Authenticate with the postboard API and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}

			password, err := promptPassword(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var resp tokenResponse
			payload := map[string]string{"username": username, "password": password}
			if err := client.Call("POST", "/login", false, payload, &resp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if err := store(resp.AccessToken); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.DeleteToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

func promptPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func store(token string) error {
	if token == "" {
		return fmt.Errorf("no token returned by API")
	}
	if err := config.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
