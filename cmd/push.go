package cmd

import (
	"github.com/habedi/escola/client"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// pushTokenCmd registers a device token so the server can send notifications to it.
func pushTokenCmd(a *app) *cobra.Command {
	var plataforma string
	cmd := &cobra.Command{
		Use:   "push-token <token>",
		Short: "Register a device for push notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			if err := a.client.RegisterPushToken(cmd.Context(), args[0], plataforma); err != nil {
				return clierr.FromAPI("register the push token", err)
			}
			log.Info().Str("plataforma", plataforma).Msg("Push token registered")
			cmd.Println("Push token registered.")
			return nil
		},
	}
	cmd.Flags().StringVar(&plataforma, "plataforma", client.DefaultPushPlatform, "Push service the token belongs to")
	return cmd
}
