package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shopmind/shop-api/internal/app"
	"github.com/shopmind/shop-api/internal/config"
	"github.com/shopmind/shop-api/internal/handler"
	"github.com/shopmind/shop-api/internal/middleware"
	"github.com/shopmind/shop-api/internal/postgres"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/internal/service"
	"github.com/shopmind/shop-api/pkg/cache"
	"github.com/shopmind/shop-api/pkg/token"
	"github.com/shopmind/shop-api/pkg/trm"

	_ "github.com/shopmind/shop-api/docs"
)

// @title           Shop API
// @version         1.0
// @description     HTTP API интернет-магазина: заказы, каталог, пользователи
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	tokens, err := token.NewManager(conf.JWT.PrivateKeyPath, conf.JWT.PublicKeyPath, conf.JWT.TTL)
	panicIfErr("failed to init token manager", err)

	ordersRepo := repo.NewOrdersRepo(db)
	productsRepo := repo.NewProductsRepo(db)
	usersRepo := repo.NewUsersRepo(db)

	txManager := trm.NewManager(db)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	events := handler.NewEventProducer(logger, conf.Kafka)

	orderService := service.NewOrderService(logger, txManager, ordersRepo, productsRepo, orderCache, events)
	productService := service.NewProductService(logger, productsRepo)
	userService := service.NewUserService(logger, usersRepo)
	authService := service.NewAuthService(logger, usersRepo, tokens)

	auth := middleware.Auth(tokens)

	application := app.New(logger, conf)
	application.SetHttpHandlers(
		handler.NewOrderHandler(logger, orderService, auth),
		handler.NewProductHandler(logger, productService, auth),
		handler.NewUserHandler(logger, userService, auth),
		handler.NewAuthHandler(logger, authService),
	)
	application.SetStarters(orderCache)
	application.SetClosers(events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", application.Start(ctx))
	<-ctx.Done()
	application.Stop()
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
