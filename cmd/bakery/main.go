package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iurnickita/bakery/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(config.NewViper()).ExecuteContext(ctx)
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bakery",
		Short:         "Bakery storefront: orders, catalog and M-Pesa payments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("backend-url", "", "bakery backend base URL")
	flags.Duration("poll-interval", 0, "payment status poll interval")
	flags.Duration("payment-timeout", 0, "payment confirmation timeout")
	bindFlag(v, config.KeyConfigFile, flags.Lookup("config"))
	bindFlag(v, config.KeyLogLevel, flags.Lookup("log-level"))
	bindFlag(v, config.KeyBackendURL, flags.Lookup("backend-url"))
	bindFlag(v, config.KeyPaymentPollInterval, flags.Lookup("poll-interval"))
	bindFlag(v, config.KeyPaymentTimeout, flags.Lookup("payment-timeout"))

	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newPayCmd(v))
	return rootCmd
}
