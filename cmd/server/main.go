package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	rd "github.com/redis/go-redis/v9"

	"shop_bots/internal/bot"
	"shop_bots/internal/config"
	"shop_bots/internal/router"
	"shop_bots/internal/store"
	shopredis "shop_bots/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	st := store.New(db)

	// The limiter stays nil without Redis; the bots then run unthrottled.
	var limiter *shopredis.Limiter
	if cfg.RedisAddr != "" {
		rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		limiter = shopredis.NewLimiter(rdb, cfg.MsgRateLimit, cfg.MsgRateWindow)
	}

	customerAPI, err := tgbotapi.NewBotAPI(cfg.CustomerToken)
	if err != nil {
		log.Fatalf("customer bot api: %v", err)
	}
	adminAPI, err := tgbotapi.NewBotAPI(cfg.AdminToken)
	if err != nil {
		log.Fatalf("admin bot api: %v", err)
	}

	// Liveness endpoint for the hosting platform.
	r := gin.Default()
	router.Setup(r)
	go func() {
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("serwer HTTP uruchomiony na %s", cfg.HTTPAddr)

	ctx := context.Background()

	customer := bot.NewCustomerBot(customerAPI, st, cfg.Catalog, cfg.AdminID, limiter)
	cu := tgbotapi.NewUpdate(0)
	cu.Timeout = 60
	go customer.Run(ctx, customerAPI.GetUpdatesChan(cu))
	log.Printf("bot klienta: @%s", customerAPI.Self.UserName)

	admin := bot.NewAdminBot(adminAPI, st, cfg.AdminID, limiter)
	au := tgbotapi.NewUpdate(0)
	au.Timeout = 60
	log.Printf("bot admina: @%s", adminAPI.Self.UserName)
	admin.Run(ctx, adminAPI.GetUpdatesChan(au))
}
