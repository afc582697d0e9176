package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/purchasing"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/notify"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Strs("notify", cfg.Notify.Drivers()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	txRunner, repos, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	promMetrics := metrics.New(cfg.Metrics.Prefix)

	sinks, closeSinks := openSinks(ctx, cfg, log)
	defer closeSinks()
	dispatcher := notify.NewDispatcher(log, promMetrics, cfg.Notify.Buffer, sinks...)

	adjustUC := inventory.NewAdjustStockUseCase(txRunner, dispatcher, promMetrics, log)
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		loadMemoryCatalog(ctx, cfg.Catalog, adjustUC, log)
	}
	ledgerUC := inventory.NewLedgerUseCase(repos.Movements)
	orderUC := orders.NewCreateOrderUseCase(txRunner, repos.Orders, dispatcher, promMetrics, log)
	purchaseOrderUC := purchasing.NewPurchaseOrderUseCase(txRunner, repos.PurchaseOrders, log)
	receiveUC := purchasing.NewReceivePurchaseOrderUseCase(txRunner, adjustUC, dispatcher, promMetrics, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(promMetrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el archivo generado)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", promMetrics.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:         orderUC,
		PurchaseOrders: purchaseOrderUC,
		Receive:        receiveUC,
		AdjustStock:    adjustUC,
		Ledger:         ledgerUC,
		Logger:         log,
		JWTSecret:      cfg.JWT.Secret,
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
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notificaciones pendientes descartadas")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore devuelve el TxRunner y los repositorios fuera de tx según STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.TxRunner, ports.TxRepos, func()) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return memory.NewTxRunner(store), store.Repos(), func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migración")
		}
		log.Info().Msg("esquema aplicado")
	}
	return postgres.NewTxRunner(pool), postgres.NewRepos(pool), pool.Close
}

// loadMemoryCatalog carga CATALOG_FILE en el store en memoria al arrancar; sin catálogo
// el store queda vacío y no hay productos ni proveedores contra los que operar.
func loadMemoryCatalog(ctx context.Context, cfg config.CatalogConfig, importer catalog.Importer, log *logger.Logger) {
	if cfg.File == "" {
		log.Warn().Msg("store en memoria sin CATALOG_FILE: no hay productos cargados")
		return
	}
	imported, err := catalog.LoadFile(ctx, importer, catalog.FileOptions{
		Path:     cfg.File,
		TenantID: cfg.TenantID,
		Latin1:   cfg.Latin1,
		Supplier: cfg.Supplier,
	})
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.File).Msg("cargar catálogo")
	}
	if imported.Supplier != nil {
		log.Info().Str("tenant_id", cfg.TenantID).Str("supplier_id", imported.Supplier.ID).Msg("proveedor creado")
	}
}

// openSinks conecta los sumideros de NOTIFY_DRIVER. Un sumidero que no conecta se omite
// con un warning: las notificaciones son best-effort y no impiden arrancar.
func openSinks(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]ports.Notifier, func()) {
	var sinks []ports.Notifier
	var closers []func() error

	for _, driver := range cfg.Notify.Drivers() {
		switch driver {
		case config.NotifyDriverLog:
			sinks = append(sinks, notify.NewLogNotifier(log))
		case config.NotifyDriverRabbitMQ:
			pub, err := notify.NewRabbitMQPublisher(notify.RabbitMQConfig{
				URL:      cfg.Notify.RabbitMQURL,
				Exchange: cfg.Notify.RabbitMQExchange,
			}, log)
			if err != nil {
				log.Warn().Err(err).Msg("sumidero rabbitmq deshabilitado")
				continue
			}
			sinks = append(sinks, pub)
			closers = append(closers, pub.Close)
		case config.NotifyDriverRedis:
			client, err := notify.NewRedisClient(ctx, cfg.Notify.RedisAddr)
			if err != nil {
				log.Warn().Err(err).Msg("sumidero redis deshabilitado")
				continue
			}
			sinks = append(sinks, notify.NewRedisPublisher(client, cfg.Notify.RedisChannel))
			closers = append(closers, client.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("cerrar sumidero")
			}
		}
	}
}
