// Command cocokit converts, merges and splits COCO annotation datasets.
package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const logLevelEnv = "COCOKIT_LOG_LEVEL"

var (
	logLevel string
	log      = logrus.NewEntry(logrus.StandardLogger())
)

var rootCmd = &cobra.Command{
	Use:           "cocokit",
	Short:         "Build and reshape COCO annotation datasets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("log-level") {
			if env := os.Getenv(logLevelEnv); env != "" {
				logLevel = env
			}
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return errors.Wrap(err, "log level")
		}
		logrus.SetLevel(level)
		log = logrus.WithField("run_id", uuid.NewString())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (overrides "+logLevelEnv+")")
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("❌ cocokit failed")
		os.Exit(1)
	}
}
