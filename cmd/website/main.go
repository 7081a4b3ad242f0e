package main

import (
	"context"
	"embed"
	"encoding/gob"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/weddinggallery/cmd/website/internal/admin"
	"github.com/adampresley/weddinggallery/cmd/website/internal/adminaccess"
	"github.com/adampresley/weddinggallery/cmd/website/internal/configuration"
	"github.com/adampresley/weddinggallery/cmd/website/internal/gallery"
	"github.com/adampresley/weddinggallery/cmd/website/internal/orphans"
	"github.com/adampresley/weddinggallery/pkg/database"
	"github.com/adampresley/weddinggallery/pkg/identity"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
	"github.com/adampresley/weddinggallery/pkg/uploaders"
	"github.com/go-chi/httprate"
	"github.com/rfberaldo/sqlz"
)

var (
	Version string = "development"
	appName string = "weddinggallery"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	adminAuthService   services.AdminAuthServicer
	batchCommitter     services.BatchCommitter
	db                 *sqlz.DB
	deleteService      services.DeleteServicer
	emailService       services.EmailService
	identityProvider   identity.Provider
	loginThrottle      *services.LoginThrottle
	orchestrator       services.UploadOrchestrator
	orphanSweeper      orphans.OrphanSweeper
	photoService       services.PhotoStorer
	renderer           rendering.TemplateRenderer
	reorderService     services.ReorderServicer
	sessionService     sessions.Session[*models.Admin]
	settingsService    services.SettingsServicer
	uploadJobService   *services.UploadJobService
	uploader           services.Uploader
	zipService         services.ZipServicer

	/* Controllers */
	adminAccessController adminaccess.AdminAccessController
	adminController       admin.AdminController
	galleryController     gallery.GalleryHandlers
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("uploadBackend", config.UploadBackend),
		slog.String("identityProvider", config.IdentityProvider),
		slog.Int("maxParallelUploads", config.MaxParallelUploads),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	if db, err = database.Connect(config.DSN); err != nil {
		panic(err)
	}

	gob.Register(&models.Admin{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.Admin](cookieStore, "weddinggalleryadmin", "admin")

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	photoService = services.NewPhotoService(services.PhotoServiceConfig{
		DB: db,
	})

	settingsService = services.NewSettingsService(services.SettingsServiceConfig{
		DB: db,
	})

	uploader = setupUploader(shutdownCtx)

	orchestrator = services.NewUploadOrchestrator(services.UploadOrchestratorConfig{
		MaxConcurrency: config.MaxParallelUploads,
		Uploader:       uploader,
	})

	batchCommitter = services.NewBatchCommitter(services.BatchCommitterConfig{
		PhotoStore: photoService,
	})

	emailService = services.NewEmailService(services.EmailServiceConfig{
		ApiKey:    config.EmailApiKey,
		FromEmail: config.FromEmail,
		FromName:  "Wedding Gallery",
		ToEmail:   config.NotifyEmail,
	})

	uploadJobService = services.NewUploadJobService(services.UploadJobServiceConfig{
		Committer:    batchCommitter,
		Notifier:     emailService,
		Orchestrator: orchestrator,
		ShutdownCtx:  shutdownCtx,
	})

	reorderService = services.NewReorderService(services.ReorderServiceConfig{
		PhotoStore: photoService,
	})

	deleteService = services.NewDeleteService(services.DeleteServiceConfig{
		MaxConcurrency: services.DefaultMaxParallelDeletes,
		PhotoStore:     photoService,
	})

	zipService = services.NewZipService(services.ZipServiceConfig{
		Timeout: time.Minute,
	})

	identityProvider = setupIdentityProvider()

	loginThrottle = services.NewLoginThrottle(services.LoginThrottleConfig{
		Cooldown:    time.Duration(config.LoginCooldownMinutes) * time.Minute,
		MaxAttempts: config.LoginMaxAttempts,
	})

	adminAuthService = services.NewAdminAuthService(services.AdminAuthServiceConfig{
		Provider: identityProvider,
		Throttle: loginThrottle,
	})

	/*
	 * Setup controllers
	 */
	adminAccessController = adminaccess.NewAdminAccessController(adminaccess.AdminAccessControllerConfig{
		AuthService:    adminAuthService,
		Renderer:       renderer,
		SessionService: sessionService,
	})

	adminController = admin.NewAdminController(admin.AdminControllerConfig{
		DeleteService:      deleteService,
		MaxParallelUploads: config.MaxParallelUploads,
		PhotoService:       photoService,
		Renderer:           renderer,
		ReorderService:     reorderService,
		SettingsService:    settingsService,
		Spooler:            admin.NewSpooler(config.SpoolDir),
		UploadJobService:   uploadJobService,
		Uploader:           uploader,
	})

	galleryController = gallery.NewGalleryController(gallery.GalleryControllerConfig{
		PhotoService:    photoService,
		Renderer:        renderer,
		SettingsService: settingsService,
		ZipService:      zipService,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	adminAccessMiddleware := newAdminAccessMiddleware(
		sessionService,
		[]string{
			"/static",
			"/admin/login",
		},
	)

	adminOnly := []mux.MiddlewareFunc{adminAccessMiddleware}
	uploadLimits := []mux.MiddlewareFunc{adminAccessMiddleware, newRequestSizeMiddleware(int64(config.MaxUploadMB) << 20)}
	loginLimits := []mux.MiddlewareFunc{httprate.LimitByIP(20, time.Minute)}

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: galleryController.GalleryPage},
		{Path: "GET /download", HandlerFunc: galleryController.DownloadAll},
		{Path: "GET /admin/login", HandlerFunc: adminAccessController.LoginPage},
		{Path: "POST /admin/login", HandlerFunc: adminAccessController.LoginAction, Middlewares: loginLimits},
		{Path: "GET /admin/logout", HandlerFunc: adminAccessController.LogoutAction},
		{Path: "GET /admin", HandlerFunc: adminController.DashboardPage, Middlewares: adminOnly},
		{Path: "POST /admin/uploads", HandlerFunc: adminController.StartUpload, Middlewares: uploadLimits},
		{Path: "GET /admin/uploads/{id}", HandlerFunc: adminController.UploadProgressPage, Middlewares: adminOnly},
		{Path: "POST /admin/photos/order", HandlerFunc: adminController.ReorderAction, Middlewares: adminOnly},
		{Path: "POST /admin/photos/move", HandlerFunc: adminController.MoveAction, Middlewares: adminOnly},
		{Path: "POST /admin/photos/select-all", HandlerFunc: adminController.SelectAllAction, Middlewares: adminOnly},
		{Path: "POST /admin/photos/delete-selected", HandlerFunc: adminController.DeleteSelectedAction, Middlewares: adminOnly},
		{Path: "POST /admin/photos/delete-all", HandlerFunc: adminController.DeleteAllAction, Middlewares: adminOnly},
		{Path: "DELETE /admin/photos/{id}", HandlerFunc: adminController.DeletePhotoAction, Middlewares: adminOnly},
		{Path: "POST /admin/header", HandlerFunc: adminController.SaveHeaderAction, Middlewares: adminOnly},
		{Path: "POST /admin/header/background", HandlerFunc: adminController.UploadHeaderBackgroundAction, Middlewares: uploadLimits},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     600,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the upload job cleanup routine
	 */
	uploadJobService.StartCleanupRoutine(10 * time.Minute)
	setupLoginThrottleCleanup(shutdownCtx)

	/*
	 * Start the orphan sweeper when photos live in our own bucket
	 */
	if orphanSweeper != nil {
		setupOrphanSweeper(shutdownCtx)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	uploadJobService.Stop()
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupUploader(shutdownCtx context.Context) services.Uploader {
	var (
		err error
	)

	if config.UploadBackend != "s3" {
		return uploaders.NewCloudinaryUploader(uploaders.CloudinaryUploaderConfig{
			CloudName:    config.CloudinaryCloudName,
			Endpoint:     config.CloudinaryEndpoint,
			Timeout:      5 * time.Minute,
			UploadPreset: config.CloudinaryUploadPreset,
		})
	}

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	sweeper := orphans.NewOrphanSweeperService(orphans.OrphanSweeperConfig{
		AwsBucket:       config.AwsBucket,
		AwsRegion:       config.AwsRegion,
		GracePeriod:     time.Duration(config.OrphanGraceHours) * time.Hour,
		PhotoService:    photoService,
		S3Client:        s3Client,
		SettingsService: settingsService,
		ShutdownCtx:     shutdownCtx,
		UploadFolder:    config.UploadFolder,
	})

	if err = sweeper.EnsureBucketExists(); err != nil {
		slog.Error("error ensuring bucket exists. aborting", "bucket", config.AwsBucket, "error", err)
		os.Exit(1)
	}

	orphanSweeper = sweeper

	return uploaders.NewS3Uploader(uploaders.S3UploaderConfig{
		Bucket:        config.AwsBucket,
		MaxImageEdge:  uint(max(config.MaxImageEdge, 0)),
		PublicBaseURL: config.PublicBaseURL,
		S3Client:      s3Client,
		UploadFolder:  config.UploadFolder,
	})
}

func setupIdentityProvider() identity.Provider {
	if config.IdentityProvider == "firebase" {
		return identity.NewFirebaseProvider(identity.FirebaseProviderConfig{
			ApiKey:   config.FirebaseApiKey,
			Endpoint: config.FirebaseEndpoint,
			Timeout:  15 * time.Second,
		})
	}

	if config.AdminEmail == "" || config.AdminPasswordHash == "" {
		slog.Warn("static identity provider has no admin credentials. nobody can sign in")
	}

	return identity.NewStaticProvider(identity.StaticProviderConfig{
		Email:        config.AdminEmail,
		PasswordHash: config.AdminPasswordHash,
	})
}

func setupLoginThrottleCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := loginThrottle.Prune(); removed > 0 {
					slog.Debug("pruned login throttle entries", "removed", removed)
				}
			}
		}
	}()
}

func setupOrphanSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		runner := func() {
			removed, err := orphanSweeper.Sweep()

			if err != nil {
				slog.Error("orphan sweep failed", "error", err)
				return
			}

			slog.Info("orphan sweep finished.", "removed", removed)
		}

		runner()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				runner()
			}
		}
	}()
}
