package main

import (
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cudliy/controller"
	"cudliy/dao/mysql"
	"cudliy/dao/store"
	"cudliy/gateway"
	"cudliy/logic"
	"cudliy/middlewares"
	"cudliy/pkg/jwt"
	"cudliy/pkg/queue"
	"cudliy/pkg/snowflake"
	"cudliy/pkg/sse"
	"cudliy/settings"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := settings.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	jwt.SetSecret(cfg.JWTSecret)
	logic.SetInitialTokens(cfg.InitialTokens)

	if err := mysql.Init(cfg.MySQLDSN); err != nil {
		log.Fatalf("Failed to init MySQL: %v", err)
	}
	defer mysql.Close()

	if err := store.Init(cfg.RedisAddr); err != nil {
		log.Fatalf("Failed to init Redis: %v", err)
	}

	if err := snowflake.Init(cfg.SnowflakeMachineID); err != nil {
		log.Fatalf("Failed to init Snowflake: %v", err)
	}

	if err := controller.InitTrans(); err != nil {
		log.Fatalf("Failed to init validator translator: %v", err)
	}

	// print dispatch queue + worker
	if err := queue.InitPrintQueue(cfg.RabbitDSN, cfg.PrintSpoolDir); err != nil {
		log.Fatalf("Failed to init print queue: %v", err)
	}
	printQueue, err := queue.GetPrintQueue()
	if err != nil {
		log.Fatalf("Failed to get print queue instance: %v", err)
	}
	defer printQueue.Close()
	go func() {
		if err := printQueue.ConsumePrint(); err != nil {
			log.Fatalf("print consume failed: %v", err)
		}
	}()

	// SSE hub
	sseHub := sse.NewHub()
	sse.SetDefaultHub(sseHub)
	go sseHub.Run()

	// generation gateway + services
	gatewayClient := gateway.New(cfg.ImageWebhookURL, cfg.ModelWebhookURL,
		time.Duration(cfg.WebhookTimeoutSec)*time.Second)
	creationSvc := logic.NewCreationService(logic.MySQLCreationStore{}, gatewayClient, logic.RedisStageCache{})
	printSvc := logic.NewPrintService(logic.MySQLPrintStore{}, printQueue, cfg.PrintTokenCost)

	creationHandler := controller.NewCreationHandler(creationSvc)
	printHandler := controller.NewPrintHandler(printSvc)

	r := gin.Default()

	r.GET("/events", sse.ServeSSE)

	r.POST("/signup", controller.SignUpHandler)
	r.POST("/login", controller.LoginHandler)
	r.POST("/refresh_token", controller.RefreshTokenHandler)

	v1 := r.Group("/api/v1", middlewares.JWTAuthMiddleware())
	{
		v1.POST("/creations", creationHandler.Submit)
		v1.GET("/creations", creationHandler.List)
		v1.GET("/creations/history", creationHandler.History)
		v1.GET("/creations/:id", creationHandler.Get)
		v1.POST("/creations/:id/image", creationHandler.GenerateImage)
		v1.POST("/creations/:id/model", creationHandler.GenerateModel)

		v1.POST("/prints", printHandler.Enqueue)
		v1.GET("/prints", printHandler.List)
		v1.GET("/prints/:id", printHandler.Get)

		v1.GET("/token/info", controller.GetUserTokenInfo)
		v1.POST("/token/recharge", controller.RechargeTokens)
	}

	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
