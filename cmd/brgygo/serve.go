package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brgygo/internal/auth"
	"brgygo/internal/cache"
	"brgygo/internal/db"
	"brgygo/internal/document"
	"brgygo/internal/server"
	"brgygo/internal/service"
	"brgygo/internal/storage"
	"brgygo/internal/store"
	"brgygo/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/urfave/cli/v2"
)

const profileCacheTTL = 5 * time.Minute

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	if cCtx.Bool("migrate") {
		if err := db.MigrateUp(config.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	awsConfig, err := loadAWSConfig(ctx, config.AWSRegion)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := cache.New(config.RedisAddr, config.RedisPassword, config.RedisDB)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	verifier, err := auth.NewTokenVerifier(ctx, config.CognitoIssuerURL)
	if err != nil {
		return err
	}

	idp := auth.NewIdentityProvider(cognitoidentityprovider.NewFromConfig(awsConfig), config.CognitoClientID)
	sessions := auth.NewSessionStore(redisClient, time.Duration(config.SessionMaxAgeSec)*time.Second)

	bucket, err := newBucket(config, awsConfig)
	if err != nil {
		return err
	}

	requestRepo := store.NewRequestRepository(pool)
	appointmentRepo := store.NewAppointmentRepository(pool)
	announcementRepo := store.NewAnnouncementRepository(pool)
	profileRepo := store.NewProfileRepository(pool)
	profileCache := store.NewProfileCache(profileRepo, redisClient, profileCacheTTL)

	renderer, err := document.NewRenderer(config.Office)
	if err != nil {
		return err
	}

	srv, err := server.New(config, logger, server.Dependencies{
		Verifier: verifier,
		IdP:      idp,
		Sessions: sessions,
		Lookup:   profileCache,

		Requests:      service.NewRequestService(requestRepo),
		Documents:     service.NewDocumentService(logger, requestRepo, profileCache, bucket, renderer),
		Appointments:  service.NewAppointmentService(appointmentRepo),
		Announcements: service.NewAnnouncementService(logger, announcementRepo, bucket),
		Profiles:      service.NewProfileService(profileRepo, profileCache, bucket, config.AdminSignupCode),
	})
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newBucket(config *types.Config, awsConfig aws.Config) (storage.Bucket, error) {
	switch config.StorageDriver {
	case "s3":
		return storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.StorageBucketName, config.AWSRegion), nil
	case "supabase":
		if config.SupabaseProjectID == "" || config.SupabaseAPIKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_API_KEY for the supabase storage driver")
		}
		return storage.NewSupabaseStorage(config.SupabaseProjectID, config.SupabaseAPIKey, config.StorageBucketName), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", config.StorageDriver)
}
