package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/campusgate/internal/config"
	"github.com/BrandonDHaskell/campusgate/internal/logger"
)

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "campusgate",
	Short:         "Campus access control: API server and scan station",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return err
		}
		log = logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
		return nil
	},
}
