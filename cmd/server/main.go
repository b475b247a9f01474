package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"order_desk/internal/config"
	"order_desk/internal/model"
	"order_desk/internal/queue"
	"order_desk/internal/router"
	"order_desk/internal/stock"
	"order_desk/internal/store"
	rediskey "order_desk/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	model.SetEventNode(cfg.NodeID)

	// 1. 数据库，自动建表
	db, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// 2. Redis：不可用时降级运行（不限流、无实时推送、无转正提示）
	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis %s unavailable, running degraded: %v", cfg.RedisAddr, err)
		_ = rdb.Close()
		rdb = nil
	}
	pingCancel()

	// 3. Kafka 生产者 / 消费者 + outbox relay
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, queue.ProducerOptions{
		MaxAttempts:  cfg.KafkaMaxAttempts,
		WriteTimeout: cfg.KafkaWriteTimeout,
		BatchTimeout: cfg.KafkaBatchTimeout,
	})
	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, stock.NewAdjuster(db))

	var stream queue.StreamAppender
	if rdb != nil {
		stream = rediskey.NewEventStream(rdb, cfg.OrderEventStream)
	}
	relay := queue.NewRelay(db, producer, stream, cfg.RelayInterval)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		relay.Run(bgCtx)
	}()
	go func() {
		defer wg.Done()
		consumer.Run(bgCtx)
	}()

	// 4. HTTP
	r := gin.Default()
	router.Setup(r, router.Deps{DB: db, Redis: rdb, Config: cfg})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	log.Println("Starting HTTP server on", cfg.HTTPAddr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	bgCancel()
	wg.Wait()
	if err := consumer.Close(); err != nil {
		log.Printf("kafka consumer close: %v", err)
	}
	if err := producer.Close(); err != nil {
		log.Printf("kafka producer close: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
