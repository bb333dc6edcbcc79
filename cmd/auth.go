package cmd

import (
	"time"

	"github.com/habedi/escola/auth"
	"github.com/habedi/escola/db"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return clierr.New(clierr.Internal, "Failed to clear the stored session.", err)
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			cmd.Println("Name:", orDash(user.NomeCompleto))
			cmd.Println("Email:", user.Email)
			cmd.Println("Type:", user.TipoUsuario)
			if user.Escola != nil {
				cmd.Println("School:", user.Escola.NomeFantasia)
			}
			cmd.Println("Can publish announcements:", user.CanPublish())
			return nil
		},
	}
}

// statusCmd reports the session state and what the stored access token says about itself.
func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println("API:", a.client.BaseURL())
			cmd.Println("Session store:", a.session.kind)
			cmd.Println("Status:", a.client.Status())
			if a.restoreErr != nil {
				cmd.Println("Restore error:", a.restoreErr)
			}
			if repo, ok := a.session.Store.(db.KVRepository); ok {
				printLastSaved(cmd, repo)
			}

			token := a.client.AccessToken()
			if token == "" {
				return nil
			}
			cmd.Println("Access token:", auth.Prefix(token))
			claims, err := auth.ParseClaims(token)
			if err != nil {
				log.Debug().Err(err).Msg("Access token is not a readable JWT")
				return nil
			}
			if left, ok := claims.ExpiresIn(time.Now()); ok {
				if left <= 0 {
					cmd.Println("Access token expired; it will be refreshed on the next request.")
				} else {
					cmd.Println("Access token expires in:", left.Round(time.Second))
				}
			}
			return nil
		},
	}
}

// printLastSaved shows when the sqlite session was last written.
func printLastSaved(cmd *cobra.Command, repo db.KVRepository) {
	entries, err := repo.List(cmd.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list stored session entries")
		return
	}
	var last time.Time
	for _, e := range entries {
		if e.UpdatedAt.After(last) {
			last = e.UpdatedAt
		}
	}
	if !last.IsZero() {
		cmd.Println("Session saved at:", last.Local().Format(time.RFC3339))
	}
}
