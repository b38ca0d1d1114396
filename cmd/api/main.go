// @title        Ferretería POS API
// @version      1.0
// @description  Punto de venta de ferretería: catálogo, carritos, ventas, kardex, caja USD/Bs y crédito.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/ferreteria-api/internal/application/auth"
	"github.com/jhoicas/ferreteria-api/internal/application/cash"
	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/credit"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/cache"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/metrics"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/migration"
	infrapdf "github.com/jhoicas/ferreteria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ferreteria-api/internal/interfaces/http"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL, o el almacén en memoria si se pidió explícitamente.
	var (
		txRunner ports.TxRunner
		store    repository.Store
		pool     *pgxpool.Pool
	)
	switch {
	case cfg.DB.HasDatabase():
		if cfg.DB.AutoMigrate {
			migrator, err := migration.New(cfg.DB.ConnectionString(), log)
			if err != nil {
				log.Fatal().Err(err).Msg("preparar migraciones")
			}
			if err := migrator.Up(); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			if err := migrator.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar migrador")
			}
		}
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		store = postgres.NewStore(pool)
	case cfg.DB.MemoryFallback:
		log.Warn().Msg("sin base de datos configurada: usando almacén en memoria")
		mem := memory.New()
		txRunner, store = mem, mem
	default:
		log.Fatal().Msg("configure DATABASE_URL o DB_HOST (o DB_MEMORY_FALLBACK=true en desarrollo)")
	}

	// Carritos por terminal: Redis si está configurado, si no en memoria.
	cartTTL := time.Duration(cfg.POS.CartTTLMinutes) * time.Minute
	var (
		carts      sales.CartStore
		redisCarts *cache.RedisCartStore
	)
	if cfg.Redis.Addr != "" {
		redisCarts, err = cache.NewRedisCartStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cartTTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisCarts.Close()
		carts = redisCarts
	} else {
		carts = cache.NewMemoryCartStore(cartTTL)
	}

	prom := metrics.NewPrometheus()

	ledger := inventory.NewLedger(store)
	cashManager := cash.NewManager(txRunner, store, cfg.POS.CashMethods, prom, log)
	productUC := catalog.NewProductUseCase(txRunner, store, ledger)
	cartUC := sales.NewCartUseCase(carts, store)
	finalizeUC := sales.NewFinalizeSaleUseCase(txRunner, carts, ledger, prom, log)
	returnsUC := sales.NewProcessReturnUseCase(txRunner, store, ledger, prom, log)
	saleQueryUC := sales.NewSaleQueryUseCase(store, infrapdf.NewMarotoReceiptGenerator(), sales.StoreInfo{
		Name:    cfg.Store.Name,
		RIF:     cfg.Store.RIF,
		Address: cfg.Store.Address,
		Phone:   cfg.Store.Phone,
	})
	movementsUC := inventory.NewRegisterMovementUseCase(txRunner, ledger, prom, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(store)
	creditUC := credit.NewUseCase(txRunner, store, cashManager, log)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ferretería POS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     productUC,
		CartUC:        cartUC,
		FinalizeSale:  finalizeUC,
		SaleQuery:     saleQueryUC,
		Returns:       returnsUC,
		Cash:          cashManager,
		Ledger:        ledger,
		Movements:     movementsUC,
		Replenishment: replenishmentUC,
		Credit:        creditUC,
		JWTSecret:     cfg.JWT.Secret,
		Metrics:       prom.Handler(),
		Health: func(c *fiber.Ctx) error {
			if pool != nil {
				if err := pool.Ping(c.UserContext()); err != nil {
					return err
				}
			}
			if redisCarts != nil {
				return redisCarts.Ping(c.UserContext())
			}
			return nil
		},
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
