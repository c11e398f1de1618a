package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	forum "github.com/nullspire/forum"
	"github.com/nullspire/forum/activitymap"
	"github.com/nullspire/forum/config"
	"github.com/nullspire/forum/middleware/authware"
)

type App struct {
	config *gconfig.Container[*config.AppConfig]
	bunDB  *bun.DB
	auth   forum.Authenticator
	repo   forum.RepositoryManager
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *config.AppConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("forum"),
	)

	cfg, err := gconfig.New(&config.AppConfig{})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Raw()))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	bunDB := bun.NewDB(db, sqlitedialect.New())

	if err := forum.CreateSchema(ctx, bunDB); err != nil {
		return err
	}

	if seeds := app.Config().GetForum().GetSeedCategories(); len(seeds) > 0 {
		if err := forum.SeedCategories(ctx, bunDB, seeds); err != nil {
			return err
		}
	}

	app.bunDB = bunDB
	app.repo = forum.NewRepositoryManager(bunDB)

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	authCfg := app.Config().GetAuth()
	uploadsCfg := app.Config().GetUploads()
	serverCfg := app.Config().GetServer()

	userProvider := forum.NewUserProvider(app.repo.Users()).
		WithLogger(app.GetLogger("auth:prv"))

	activityLogger := app.GetLogger("activity")
	activitySink := forum.ActivitySinkFunc(func(ctx context.Context, event forum.ActivityEvent) error {
		record := activitymap.Normalize(event)
		activityLogger.Info("activity recorded",
			"verb", record.Verb,
			"actor_id", record.ActorID,
			"object_type", record.ObjectType,
			"object_id", record.ObjectID,
			"channel", record.Channel,
		)
		return nil
	})

	auther := forum.NewAuthenticator(userProvider, authCfg).
		WithLogger(app.GetLogger("auth")).
		WithActivitySink(activitySink)
	app.auth = auther

	controller := forum.NewAPIController(
		forum.WithControllerLogger(app.GetLogger("api")),
		forum.WithControllerRepo(app.repo),
		forum.WithControllerAuther(auther),
		forum.WithControllerAdminEmail(authCfg.GetAdminEmail()),
		forum.WithControllerActivitySink(activitySink),
	)
	controller.ContextKey = authCfg.GetContextKey()

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			BodyLimit: int(uploadsCfg.GetMaxBytes()) + 1024*1024,
		})

		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins: serverCfg.GetCORSOrigin(),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))

		forum.RegisterUploadRoutes(fiberApp, forum.UploadConfig{
			Dir:        uploadsCfg.GetDir(),
			MaxBytes:   uploadsCfg.GetMaxBytes(),
			AuthScheme: authCfg.GetAuthScheme(),
			Validator:  auther.TokenService(),
			Logger:     app.GetLogger("uploads"),
		})

		return router.DefaultFiberOptions(fiberApp)
	})

	wareCfg := authware.Config{
		ContextKey:     authCfg.GetContextKey(),
		AuthScheme:     authCfg.GetAuthScheme(),
		TokenValidator: validatorAdapter{svc: auther.TokenService()},
	}

	access := authware.New(wareCfg)
	admin := authware.RequireAdmin(wareCfg)

	controller.RegisterRoutes(srv.Router().Group("/api"), access, admin)

	app.srv = srv

	return nil
}

// validatorAdapter narrows the token service to the middleware's claims view.
type validatorAdapter struct {
	svc forum.TokenService
}

func (v validatorAdapter) Validate(raw string) (authware.AuthClaims, error) {
	claims, err := v.svc.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func WaitExitSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
