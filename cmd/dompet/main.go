// Command dompet is the operator CLI: period reports, default categories and
// statement imports straight against the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"dompet/internal/config"
	"dompet/internal/database"
	"dompet/internal/logger"
	"dompet/internal/uuid"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:               "dompet",
		Short:             "Personal finance balances, statistics and budgets",
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/dompet/config.yaml)")
	rootCmd.PersistentFlags().String("user", "", "user ID the command acts for")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(fmt.Sprintf("%s/.config/dompet", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DOMPET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := logger.InitLevel(os.Getenv("ENV"), viper.GetString("logging.level")); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// requireUser returns the configured user ID.
func requireUser() (string, error) {
	userID := viper.GetString("user")
	if userID == "" {
		return "", errors.New("a user is required: pass --user or set DOMPET_USER")
	}
	if !uuid.IsValid(userID) {
		return "", fmt.Errorf("invalid user ID %q", userID)
	}
	return userID, nil
}

// openDB connects with the same settings as the API server and brings the
// schema up to date.
func openDB() (*gorm.DB, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := manager.RunMigrations(); err != nil {
		manager.Close()
		return nil, nil, nil, err
	}

	closeFn := func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnw("failed to close database", "error", err)
		}
	}
	return manager.DB(), cfg, closeFn, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dompet", version)
		},
	}
}
