package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/habedi/escola/client"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/habedi/escola/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// skipSessionAnnotation marks commands that run without a backend connection.
const skipSessionAnnotation = "escola/skip-session"

// app carries what every command shares: the settings, the session store and the client.
type app struct {
	cfg     config.Config
	session *sessionStore
	client  *client.Client
	// restoreErr is why the persisted session could not be restored, if it could not.
	restoreErr error
}

func Execute() {
	a := &app{}
	rootCmd := createRootCmd(a)
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")
	rootCmd.SetOut(os.Stdout)

	err := rootCmd.Execute()
	if cerr := a.close(); cerr != nil {
		log.Error().Err(cerr).Msg("Failed to close the session store.")
	}
	if err != nil {
		log.Error().Err(err).Msg("Command execution failed.")
		rootCmd.PrintErrln("Error:", err)
		os.Exit(exitCode(err))
	}
}

func createRootCmd(a *app) *cobra.Command {
	var apiURL, session string

	rootCmd := &cobra.Command{
		Use:           "escola",
		Short:         "Command-line client for the school communication platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("session") {
				cfg.Session = session
				if err := config.ValidateSession(session); err != nil {
					return clierr.New(clierr.Validation, err.Error(), err)
				}
			}
			a.cfg = cfg
			if cmd.Annotations[skipSessionAnnotation] == "true" {
				return nil
			}
			return a.connect(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Base URL of the API (env ESCOLA_API_URL)")
	rootCmd.PersistentFlags().StringVar(&session, "session", config.SessionSQLite, "Where the session is kept [sqlite, redis, memory] (env ESCOLA_SESSION)")

	rootCmd.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		statusCmd(a),
		alunosCmd(a),
		turmasCmd(a),
		materiasCmd(a),
		agendasCmd(a),
		momentosCmd(a),
		comunicadosCmd(a),
		pushTokenCmd(a),
		versionCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// connect opens the session store, builds the client and restores any persisted session.
func (a *app) connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openSessionStore(ctx, a.cfg)
	if err != nil {
		return clierr.New(clierr.Internal, fmt.Sprintf("Failed to open the %s session store: %v", a.cfg.Session, err), err)
	}
	a.session = store

	c, err := client.New(a.cfg.APIURL, store,
		client.WithTimeout(a.cfg.HTTPTimeout),
		client.WithUserAgent("escola-cli/"+version),
	)
	if err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	a.client = c

	user, err := c.RestoreSession(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not restore the previous session")
		a.restoreErr = err
		return nil
	}
	if user != nil {
		log.Debug().Str("user_id", user.ID.String()).Msg("Session restored")
	}
	return nil
}

// requireUser fails unless a session is active.
func (a *app) requireUser() (*client.User, error) {
	if a.client != nil {
		if u := a.client.User(); u != nil && a.client.Status() == client.StatusAuthenticated {
			return u, nil
		}
	}
	if a.restoreErr != nil {
		var apiErr *client.Error
		if errors.As(a.restoreErr, &apiErr) && apiErr.Kind == client.NetworkUnavailable {
			return nil, clierr.FromAPI("restore the session", a.restoreErr)
		}
	}
	return nil, clierr.New(clierr.Auth, "You are not logged in. Please run `escola login` first.", a.restoreErr)
}

func (a *app) close() error {
	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}

func exitCode(err error) int {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr.Type.ExitCode()
	}
	return 1
}
