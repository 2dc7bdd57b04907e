package main

import (
	"context"
	"fmt"

	"github.com/soview/salesorders/internal/adapter/config"
	"github.com/soview/salesorders/internal/adapter/handler/http"
	"github.com/soview/salesorders/internal/adapter/logger"
	"github.com/soview/salesorders/internal/adapter/storage"
	"github.com/soview/salesorders/internal/adapter/storage/repository"
	"github.com/soview/salesorders/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	itemHandler, err := http.NewItemHandler(svc, log.Named("Item handler"))
	if err != nil {
		log.Error("item handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, orderHandler, itemHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
