package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/njg37/video-generator-backend/internal/history"
	"github.com/njg37/video-generator-backend/internal/http/handlers"
	"github.com/njg37/video-generator-backend/internal/http/httpapi"
	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/njg37/video-generator-backend/internal/infra/geoip"
	"github.com/njg37/video-generator-backend/internal/media"
	"github.com/njg37/video-generator-backend/internal/middleware"
	"github.com/njg37/video-generator-backend/internal/pipeline"
	"github.com/njg37/video-generator-backend/internal/providers/pexels"
	"github.com/njg37/video-generator-backend/internal/providers/spotify"
	"github.com/njg37/video-generator-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	uploads, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare uploads directory")
	}
	outputs := uploads
	if cfg.OutputDir != cfg.UploadDir {
		outputs, err = storage.NewFileStore(cfg.OutputDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare output directory")
		}
	}

	prober := media.NewProber(cfg.FFprobePath)
	muxer := media.NewMuxer(media.Options{
		FFmpegPath: cfg.FFmpegPath,
		VideoCodec: cfg.VideoCodec,
		AudioCodec: cfg.AudioCodec,
		Timeout:    cfg.TranscodeTimeout,
		Logger:     &logger,
	})

	var (
		themeSource   pipeline.ThemeSource
		themeResolver handlers.ThemeURLResolver
	)
	switch cfg.ThemeSource {
	case infra.ThemeSourcePexels:
		client := pexels.NewClient(pexels.Options{
			APIKey: cfg.PexelsAPIKey,
			Logger: &logger,
		})
		src := pipeline.NewPexelsSource(client, outputs, prober, cfg.SearchTimeout, logger)
		themeSource = src
		themeResolver = src
	default:
		themeSource = pipeline.NewLibrarySource(cfg.ThemeDir)
	}

	generator := pipeline.NewGenerator(uploads, outputs, themeSource, muxer, logger)

	spotifyClient := spotify.NewClient(spotify.Options{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURI:  cfg.SpotifyRedirectURI,
		Logger:       &logger,
	})

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if pool != nil {
		defer pool.Close()
	}
	hist := history.NewRepository(pool)
	if err := hist.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare history schema")
	}

	var countries middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countries = resolver.CountryCode
	}

	app := handlers.NewApp(cfg, logger, generator, themeResolver, spotifyClient, hist)
	router := httpapi.NewRouter(app, cfg, logger, countries)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
