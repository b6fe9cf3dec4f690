package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain and store a bearer token",
	Long: `Log in against the backend and store the bearer token locally.

Subsequent commands attach the token to every request automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

// signupCmd represents the signup command
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store its bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

func authenticate(cmd *cobra.Command, signup bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	username := loginUsername
	if username == "" {
		username = prompt("Username: ")
	}
	password := loginPassword
	if password == "" {
		password = prompt("Password: ")
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	client := newClient(cfg, store)
	var token string
	if signup {
		token, err = client.Signup(cmd.Context(), username, password)
	} else {
		token, err = client.Login(cmd.Context(), username, password)
	}
	if err != nil {
		return err
	}

	if err := store.Set(internal.KeyToken, token); err != nil {
		return err
	}
	if err := store.Set(internal.KeyUsername, username); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", username)
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(input)
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
		c.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	}
}
