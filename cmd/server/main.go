package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"publicpulse/internal/config"
	noopemail "publicpulse/internal/email/noop"
	sesemail "publicpulse/internal/email/ses"
	"publicpulse/internal/extractor"
	"publicpulse/internal/extractor/gemini"
	"publicpulse/internal/extractor/openrouter"
	"publicpulse/internal/handler"
	"publicpulse/internal/imaging"
	"publicpulse/internal/logger"
	"publicpulse/internal/ocr/tesseract"
	"publicpulse/internal/port"
	"publicpulse/internal/repository/postgres"
	"publicpulse/internal/router"
	"publicpulse/internal/service"
	s3storage "publicpulse/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	subRepo := postgres.NewSubmissionRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Register extractor providers and build the extraction chain
	extractor.RegisterProvider("gemini", func(c *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return gemini.NewExtractor(c), nil
	})
	extractor.RegisterProvider("openrouter", func(c *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return openrouter.NewExtractor(c), nil
	})

	docExtractor, err := buildExtractor(cfg, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	var recognizer port.TextRecognizer
	if cfg.OCR.Enabled {
		recognizer = tesseract.NewRecognizer(cfg.OCR.Languages)
	}

	emailSender, err := buildEmailSender(cfg, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	extractionSvc := service.NewExtractionService(docExtractor, imaging.NewCodec(), recognizer, cfg, zlog)
	subSvc := service.NewSubmissionService(subRepo, userRepo, s3Client, extractionSvc, emailSender, cfg.S3, zlog)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc, zlog)
	subH := handler.NewSubmissionHandler(subSvc, zlog)
	reportH := handler.NewReportHandler(subSvc, zlog)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, authH, subH, reportH, healthH, cfg.CORS.AllowedOrigins, zlog)

	zlog.Info("server starting", zap.String("addr", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildExtractor constructs the primary extractor, wrapped in a fallback
// chain when a secondary provider is configured.
func buildExtractor(cfg *config.Config, zlog *zap.Logger) (port.DocumentExtractor, error) {
	primary, err := extractor.NewExtractor(&cfg.Extractor.Primary)
	if err != nil {
		return nil, err
	}

	fbCfg := cfg.Extractor.FallbackConfig()
	if fbCfg == nil {
		return primary, nil
	}

	fallback, err := extractor.NewExtractor(fbCfg)
	if err != nil {
		return nil, err
	}
	return extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, fallback},
		[]string{cfg.Extractor.Primary.Provider, fbCfg.Provider},
		zlog,
	), nil
}

func buildEmailSender(cfg *config.Config, zlog *zap.Logger) (port.EmailSender, error) {
	if cfg.Email.Provider == "ses" {
		return sesemail.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.PortalURL)
	}
	return noopemail.NewNoopSender(zlog), nil
}
