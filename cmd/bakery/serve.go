package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/auth"
	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/cache"
	"github.com/iurnickita/bakery/internal/catalog"
	"github.com/iurnickita/bakery/internal/config"
	"github.com/iurnickita/bakery/internal/handler"
	"github.com/iurnickita/bakery/internal/logger"
	"github.com/iurnickita/bakery/internal/payment"
	"github.com/iurnickita/bakery/internal/service"
	"github.com/iurnickita/bakery/internal/store"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.StringP("addr", "a", "", "listen address")
	flags.StringP("database", "d", "", "postgres:// DSN or SQLite file")
	flags.String("redis", "", "Redis address for the catalog cache")
	bindFlag(v, config.KeyServerAddr, flags.Lookup("addr"))
	bindFlag(v, config.KeyDBDsn, flags.Lookup("database"))
	bindFlag(v, config.KeyCacheRedisAddr, flags.Lookup("redis"))
	return cmd
}

func serve(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.GetConfig(v)
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	client := backend.NewClient(cfg.Backend, zaplog)
	catalog := catalog.NewCatalog(client, cache.NewCache(cfg.Cache, "bakery"), cfg.Cache.TTL, zaplog)

	payments := payment.NewManager(cfg.Payment, client, zaplog)
	defer payments.Close()

	auth := auth.NewAuth(cfg.Auth, client, zaplog)
	service := service.NewService(cfg.Service, store, client, catalog, payments, zaplog)

	zaplog.Info("starting bakery storefront",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Duration("poll_interval", cfg.Payment.PollInterval),
		zap.Duration("payment_timeout", cfg.Payment.Timeout))
	return handler.Serve(cmd.Context(), cfg.Handler, auth, service, zaplog)
}

// bindFlag привязывает флаг к ключу настроек: заданный флаг важнее файла и окружения.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
