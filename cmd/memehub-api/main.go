package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/memelab/memehub/internal/auth"
	"github.com/memelab/memehub/internal/chat"
	"github.com/memelab/memehub/internal/config"
	"github.com/memelab/memehub/internal/database"
	"github.com/memelab/memehub/internal/logging"
	"github.com/memelab/memehub/internal/memes"
	"github.com/memelab/memehub/internal/server"
	"github.com/memelab/memehub/internal/upload"
	"github.com/memelab/memehub/internal/users"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "memehub-api",
		Short: "MemeHub backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("oauth-client-id", defaults.GetString("oauth.client_id"), "OAuth client ID")
	cmd.PersistentFlags().String("oauth-authorize-url", defaults.GetString("oauth.authorize_url"), "OAuth authorize endpoint")
	cmd.PersistentFlags().String("oauth-token-url", defaults.GetString("oauth.token_url"), "OAuth token endpoint")
	cmd.PersistentFlags().String("oauth-userinfo-url", defaults.GetString("oauth.userinfo_url"), "OAuth userinfo endpoint")
	cmd.PersistentFlags().String("oauth-redirect-uri", defaults.GetString("oauth.redirect_uri"), "OAuth redirect URI")
	cmd.PersistentFlags().String("upload-dir", defaults.GetString("upload.dir"), "Directory for uploaded images")
	cmd.PersistentFlags().Bool("auto-approve", defaults.GetBool("moderation.auto_approve"), "Publish submissions without review")
	cmd.PersistentFlags().String("session-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "oauth.client_id", "oauth-client-id")
	bindFlag(cmd, "oauth.authorize_url", "oauth-authorize-url")
	bindFlag(cmd, "oauth.token_url", "oauth-token-url")
	bindFlag(cmd, "oauth.userinfo_url", "oauth-userinfo-url")
	bindFlag(cmd, "oauth.redirect_uri", "oauth-redirect-uri")
	bindFlag(cmd, "upload.dir", "upload-dir")
	bindFlag(cmd, "moderation.auto_approve", "auto-approve")
	bindFlag(cmd, "session.signing_secret", "session-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	sessions, err := auth.NewSessionManager(auth.SessionManagerConfig{
		SigningSecret: []byte(appConfig.SessionSigningSecret),
		CookieName:    appConfig.SessionCookieName,
		TTL:           appConfig.SessionTTL,
	})
	if err != nil {
		return err
	}

	oauthClient, err := auth.NewProviderClient(auth.ProviderConfig{
		ClientID:     appConfig.OAuthClientID,
		ClientSecret: appConfig.OAuthClientSecret,
		AuthorizeURL: appConfig.OAuthAuthorizeURL,
		TokenURL:     appConfig.OAuthTokenURL,
		UserInfoURL:  appConfig.OAuthUserInfoURL,
		RedirectURI:  appConfig.OAuthRedirectURI,
		Scopes:       []string{"openid", "profile"},
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		return err
	}

	memeService, err := memes.NewService(memes.ServiceConfig{
		Database:    db,
		Clock:       time.Now,
		IDProvider:  memes.NewUUIDProvider(),
		Logger:      logger,
		AutoApprove: appConfig.AutoApproveSubmissions,
	})
	if err != nil {
		return err
	}

	chatService, err := chat.NewService(chat.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: memes.NewUUIDProvider(),
	})
	if err != nil {
		return err
	}

	uploadService, err := upload.NewService(upload.ServiceConfig{
		Dir:     appConfig.UploadDir,
		BaseURL: appConfig.UploadBaseURL,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Sessions:        sessions,
		OAuth:           oauthClient,
		UserService:     userService,
		MemeService:     memeService,
		ChatService:     chatService,
		UploadService:   uploadService,
		Logger:          logger,
		FrontendBaseURL: appConfig.FrontendBaseURL,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
