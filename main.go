package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/server"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/store/db"
	"github.com/yomu-app/yomu/worker"
)

const (
	greetingBanner = `
██    ██  ██████  ███    ███ ██    ██
 ██  ██  ██    ██ ████  ████ ██    ██
  ████   ██    ██ ██ ████ ██ ██    ██
   ██    ██    ██ ██  ██  ██ ██    ██
   ██     ██████  ██      ██  ██████`
)

var (
	configFile string
	host       string
	port       int
	data       string

	rootCmd = &cobra.Command{
		Use:   "yomu",
		Short: "Yomu is a manga reading platform",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s, err := openStore(ctx, cmd)
			if err != nil {
				log.Error("Error opening store", zap.Error(err))
				return
			}
			defer s.Close()

			viewPool := worker.NewViewRecordPool(s, config.Opts.WorkerPoolSize)
			retention := worker.NewRetentionWorker(s)
			go retention.Run()

			httpServer := server.StartServer(s, viewPool)
			fmt.Println(greetingBanner)
			log.Info("Yomu started",
				zap.String("addr", httpServer.Addr),
				zap.String("data", config.Opts.Data))

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			log.Info("Shutting down")
			retention.Stop()
			server.Shutdown(httpServer, 10*time.Second)
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the database",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if err := loadConfig(cmd); err != nil {
				log.Error("Error loading config", zap.Error(err))
				return
			}
			d, err := db.NewDB(config.Opts.DSN)
			if err != nil {
				log.Error("Error connecting to database", zap.Error(err))
				return
			}
			defer d.Close()
			if err := d.Migrate(ctx); err != nil {
				log.Error("Error migrating database", zap.Error(err))
				return
			}
			if err := d.Seed(ctx); err != nil {
				log.Error("Error seeding database", zap.Error(err))
				return
			}
			log.Info("Database seeded")
		},
	}
)

func openStore(ctx context.Context, cmd *cobra.Command) (*store.Store, error) {
	if err := loadConfig(cmd); err != nil {
		return nil, err
	}

	d, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}

	s := store.NewStore(d.DB)
	if err := s.Ping(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// loadConfig layers defaults, the config file, then command-line flags.
func loadConfig(cmd *cobra.Command) error {
	if _, err := config.GetConfig(); err != nil {
		return err
	}
	if configFile != "" {
		if _, err := config.ParseFile(configFile); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("host") {
		config.Opts.Host = host
	}
	if cmd.Flags().Changed("port") {
		config.Opts.Port = port
	}
	if cmd.Flags().Changed("data") {
		config.Opts.Data = data
		config.Opts.DSN = filepath.Join(data, "yomu.db")
	}
	log.Logger = log.NewLogger()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&host, "host", "0.0.0.0", "host to listen on")
	rootCmd.PersistentFlags().IntVar(&port, "port", 8080, "port to listen on")
	rootCmd.PersistentFlags().StringVar(&data, "data", "", "data directory")
	rootCmd.AddCommand(seedCmd)
}

func main() {
	defer log.Logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
