package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/app"
	"github.com/phenrril/storefront/internal/config"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := rootCmd().Execute(); err != nil {
		zlog.Error().Err(err).Msg("storefront")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Tienda online: catálogo, carrito, pedidos y panel de administración",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), envFile, serve)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "archivo .env a cargar")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migra la base y levanta el servidor HTTP",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), envFile, serve)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Aplica el esquema y las etiquetas de sortimento",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), envFile, func(ctx context.Context, a *app.App) error {
					return a.Migrate(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Carga el catálogo de ejemplo si está vacío",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), envFile, func(ctx context.Context, a *app.App) error {
					if err := a.Migrate(ctx); err != nil {
						return err
					}
					return a.Seed(ctx)
				})
			},
		},
		exportCmd(&envFile),
	)
	return cmd
}

func exportCmd(envFile *string) *cobra.Command {
	var what, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta productos o pedidos a XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *envFile, func(ctx context.Context, a *app.App) error {
				var write func(context.Context, io.Writer) error
				switch what {
				case "products":
					write = a.Exporter.WriteProducts
				case "orders":
					write = a.Exporter.WriteOrders
				default:
					return fmt.Errorf("export: unknown dataset %q (products|orders)", what)
				}
				if out == "" {
					out = what + "-" + time.Now().Format("20060102") + ".xlsx"
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := write(ctx, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				zlog.Info().Str("file", out).Str("dataset", what).Msg("export written")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&what, "what", "products", "products | orders")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo de salida")
	return cmd
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func withApp(ctx context.Context, envFile string, run func(context.Context, *app.App) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	db, err := postgres.Open(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return run(ctx, app.NewApp(cfg, db))
}

// listen prueba el puerto configurado y, si está ocupado, los diez siguientes.
func listen(port string) (net.Listener, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err == nil {
		return ln, nil
	}
	base, convErr := strconv.Atoi(port)
	if convErr != nil {
		return nil, err
	}
	for p := base + 1; p <= base+10; p++ {
		if l2, err2 := net.Listen("tcp", ":"+strconv.Itoa(p)); err2 == nil {
			zlog.Warn().Str("wanted", port).Int("port", p).Msg("port busy, using fallback")
			return l2, nil
		}
	}
	return nil, err
}

func serve(ctx context.Context, a *app.App) error {
	if err := a.Migrate(ctx); err != nil {
		return err
	}
	if err := a.Seed(ctx); err != nil {
		return err
	}

	ln, err := listen(a.Config.Port)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           a.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", ln.Addr().String()).Str("env", a.Config.AppEnv).Msg("http server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	zlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
