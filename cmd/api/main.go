package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ordem-compra/internal/application/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/ordem-compra/internal/infrastructure/pdf"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/postgres"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/session"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/ordem-compra/internal/interfaces/http"
	"github.com/jhoicas/ordem-compra/pkg/config"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL o memoria (desarrollo / demo)
	var (
		orderRepo repository.OrderRepository
		txRunner  purchasing.OrderTxRunner
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		repo := memory.NewOrderRepository()
		orderRepo, txRunner = repo, memory.NewTxRunner(repo)
		log.Warn().Msg("usando repositorio en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.Migrate {
			version, err := postgres.Migrate(cfg.DB.ConnectionString())
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Uint("version", version).Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		orderRepo, txRunner = postgres.NewOrderRepository(pool), postgres.NewTxRunner(pool)
	}

	numbering := domainpurchasing.Numbering{
		Format:    cfg.Order.NumberFormat,
		Floor:     cfg.Order.NumberFloor,
		Width:     cfg.Order.NumberWidth,
		Separator: cfg.Order.NumberSeparator,
	}
	orderUC := purchasing.NewOrderUseCase(orderRepo, txRunner, numbering, log)

	// PDF: planner propio + maroto; logo y firma se resuelven por pedido (con caché)
	planner := infrapdf.NewPlanner(infrapdf.OptionsFromConfig(cfg.PDF, cfg.Order.TaxColumns), infrapdf.NewFPDFMeasurer())
	renderer := infrapdf.NewMarotoOrderRenderer(planner)
	assets := infrapdf.NewAssetLoader(cfg.PDF.LogoPath, cfg.PDF.SignaturePath, cfg.PDF.AssetTimeout, log)

	// Archivo S3 opcional: sin bucket el PDF solo se descarga
	var archive purchasing.DocumentArchive
	if cfg.Storage.Enabled() {
		s3Archive, err := storage.NewS3Archive(ctx, cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("archivo S3 deshabilitado")
		} else {
			archive = s3Archive
			log.Info().Str("bucket", cfg.Storage.Bucket).Msg("archivo S3 habilitado")
		}
	}
	pdfUC := purchasing.NewPDFUseCase(orderRepo, renderer, assets, archive, entity.DefaultOrganization(), log)

	// Sesión: portal externo si está configurado, si no JWT local
	var verifier session.Verifier
	if cfg.Session.PortalURL != "" {
		verifier = session.NewPortalVerifier(cfg.Session.PortalURL, cfg.Session.VerifyTimeout)
	} else {
		verifier = session.NewJWTVerifier(cfg.Session.JWTSecret, cfg.Session.JWTIssuer)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg.HTTP.CORSOrigins)))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ordem de Compra API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:  orderUC,
		PDFUC:    pdfUC,
		Verifier: verifier,
		Log:      log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// corsConfig fiber rechaza credenciales con origen comodín.
func corsConfig(origins []string) cors.Config {
	joined := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins:     joined,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderSessionToken,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: joined != "" && !strings.Contains(joined, "*"),
	}
}
