package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	authorsite "github.com/KylerLong-dev/author-site"
)

var (
	cfgFile   string
	debug     bool
	logger    *zap.Logger
	appConfig authorsite.SiteConfig
)

var rootCmd = &cobra.Command{
	Use:           "authorsite",
	Short:         "Author portfolio and blog backed by Ghost CMS",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, postsCmd, tagsCmd, statsCmd, versionCmd)
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// newViper returns a viper instance with every key defaulted so that
// AutomaticEnv can resolve it, plus the deployment's legacy variable names.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("name", "Doug's Portfolio")
	v.SetDefault("author", "Doug Long")
	v.SetDefault("description", "Author of heartwarming fiction. Novels, short stories, and notes on the writing life.")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("email", "")
	v.SetDefault("phone", "")
	for _, k := range []string{"twitter", "instagram", "facebook", "linkedin", "goodreads"} {
		v.SetDefault("social."+k, "")
	}
	v.SetDefault("addr", ":3000")

	v.SetDefault("ghost.url", "")
	v.SetDefault("ghost.key", "")
	v.SetDefault("ghost.version", "v5.0")
	v.SetDefault("ghost.timeout", "10s")
	v.SetDefault("ghost.postsPerPage", 9)
	v.SetDefault("ghost.relatedPosts", 3)

	v.SetDefault("revalidate.posts", "60s")
	v.SetDefault("revalidate.pages", "300s")
	v.SetDefault("revalidate.site", "3600s")

	v.SetDefault("analytics.enabled", true)
	v.SetDefault("analytics.path", "data/analytics.db")
	v.SetDefault("analytics.retentionDays", 365)
	v.SetDefault("sessionSecret", "")
	v.SetDefault("cookieSecure", false)

	v.SetEnvPrefix("AUTHORSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("ghost.url", "AUTHORSITE_GHOST_URL", "GHOST_API_URL")
	_ = v.BindEnv("ghost.key", "AUTHORSITE_GHOST_KEY", "GHOST_CONTENT_API_KEY")
	_ = v.BindEnv("url", "AUTHORSITE_URL", "NEXT_PUBLIC_SITE_URL")
	return v
}

func initializeConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := newViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("no config file, using defaults and environment")
	} else {
		logger.Debug("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}
