package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"messenger/api/middleware"
	"messenger/api/routes"
	"messenger/config"
	"messenger/db"
	"messenger/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err = db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	// Redis и RabbitMQ опциональны: без них не будет счетчиков
	// непрочитанных и межинстансовой доставки
	if err = services.InitRedis(); err != nil {
		log.Printf("Redis unavailable, unread counters disabled: %v", err)
	} else {
		defer services.CloseRedis()
	}

	ctx := context.Background()
	if err = services.InitRabbitMQ(); err != nil {
		log.Printf("RabbitMQ unavailable, cross-instance delivery disabled: %v", err)
	} else {
		defer services.CloseRabbitMQ()
		hostname, _ := os.Hostname()
		queueName := "message_delivery_" + hostname
		if err = services.StartDeliveryConsumer(ctx, queueName); err != nil {
			log.Printf("Failed to start delivery consumer: %v", err)
		}
	}

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("messenger"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	routes.PublicApi(router)

	addr := ":8080"
	if config.AppConfig.Backend.Port != 0 {
		addr = fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
