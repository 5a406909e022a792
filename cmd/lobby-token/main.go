package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/lobby-backend/internal/config"
	"github.com/rocketscienceinc/lobby-backend/internal/service"
)

const defaultTTL = time.Hour

// newRootCmd - mints an access token the redis backend accepts, for local play against the lobby.
func newRootCmd() *cobra.Command {
	var (
		configFile string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "lobby-token <user-id>",
		Short: "Mint a lobby access token",
		Long:  `Signs an HS256 token for user-id with the configured store jwt secret.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}

			conf, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("unable to load config: %w", err)
			}
			if conf.Store.JWTSecret == "" {
				return config.ErrMissingJWTSecret
			}

			token, err := service.NewAuthService(conf.Store.JWTSecret).GenerateToken(args[0], ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "config file, the environment is used when it is absent")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTTL, "token lifetime")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
