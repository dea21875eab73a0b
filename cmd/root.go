package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const dnsGroup = "dns"

var rootCmd = &cobra.Command{
	Use:   "cloudflare-dns-bot",
	Short: "Manage Cloudflare DNS records from Telegram or the command line",
}

var rootOpts = struct {
	logLevel  string
	logFormat string
}{}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddGroup(&cobra.Group{ID: dnsGroup, Title: "DNS Commands:"})

	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", "text", "Log format (text, json)")
}

func initConfig() {
	// Missing .env is fine; the environment itself still applies.
	_ = godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viperHack(rootCmd.Commands())
	viperHackEnv(rootCmd)
}

func viperHack(commands []*cobra.Command) {
	for _, cmd := range commands {
		viper.BindPFlags(cmd.Flags())
		viperHackEnv(cmd)
		if cmd.HasSubCommands() {
			viperHack(cmd.Commands())
		}
	}
}

func viperHackEnv(cmd *cobra.Command) {
	viper.BindPFlags(cmd.Flags())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(f.Name, f)
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			cmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func newLogger() *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(rootOpts.logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if rootOpts.logFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
