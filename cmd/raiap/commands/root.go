package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"raiap/internal/app"
)

var (
	conf       = viper.New()
	passphrase string
	appCtx     *app.App
)

// Execute runs the root command.
func Execute() error {
	return newRoot().ExecuteContext(context.Background())
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "raiap",
		Short:         "Self-sovereign identity cards, key evolution and anchor streams",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(conf)
			if err != nil {
				return err
			}
			if passphrase == "" {
				passphrase = conf.GetString("passphrase")
			}
			appCtx, err = app.New(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("home", "", "data dir (default ~/.raiap)")
	flags.String("store", "", "stream store: file, badger, redis, postgres or memory")
	flags.String("redis-url", "", "redis URL for store=redis")
	flags.String("postgres-dsn", "", "postgres DSN for store=postgres")
	flags.String("log-level", "", "log level")
	flags.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keystore (or RAIAP_PASSPHRASE)")
	for key, flag := range map[string]string{
		"home":         "home",
		"store":        "store",
		"redis.url":    "redis-url",
		"postgres.dsn": "postgres-dsn",
		"log.level":    "log-level",
	} {
		_ = conf.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		rotateCmd(),
		generationsCmd(),
		exportPublicCmd(),
		sharesCmd(),
		recoverCmd(),
		profileCmd(),
		anchorCmd(),
		verifyCmd(),
		forkCmd(),
		exportCmd(),
		importCmd(),
	)
	return root
}

var errNoPassphrase = errors.New("passphrase required (-p or RAIAP_PASSPHRASE)")

func requirePassphrase() error {
	if passphrase == "" {
		return errNoPassphrase
	}
	return nil
}
