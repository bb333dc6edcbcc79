package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/habedi/escola/pkg/clierr"
	"github.com/habedi/escola/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd creates a new cobra.Command for logging into the platform.
func loginCmd(a *app) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the school platform",
		Long:  "Log in with your email and password. The session is kept until you log out or it expires.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				cmd.Println("Please enter your email and password.")
				var err error
				if email, err = promptForInput(cmd, in, "Email: "); err != nil {
					return clierr.New(clierr.Internal, "Failed to read the email.", err)
				}
			}
			if err := validation.ValidateEmail(email); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			var password string
			var err error
			if passwordStdin {
				password, err = readLine(in)
			} else {
				password, err = promptForPassword(cmd, in, "Password: ")
			}
			if err != nil {
				return clierr.New(clierr.Internal, "Failed to read the password.", err)
			}
			if password == "" {
				return clierr.New(clierr.Validation, "Password cannot be empty.", nil)
			}

			session, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				log.Error().Err(err).Str("email", email).Msg("Login failed")
				return clierr.FromAPI("log in", err)
			}
			cmd.Printf("Login was successful. Welcome, %s.\n", userName(&session.User))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email to log in with (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from standard input instead of prompting")

	return cmd
}

// promptForInput prints prompt and returns the next trimmed line.
func promptForInput(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	return readLine(in)
}

// promptForPassword reads a password without echo when stdin is a terminal.
func promptForPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(password)), nil
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
