package main

import (
	"context"
	"os"

	"marketchat/global/config"
	"marketchat/logger"
	"marketchat/middleware/security"
	"marketchat/module/chat/store"
	"marketchat/service/chat"
	"marketchat/service/events"
	"marketchat/service/mgo"
	"marketchat/service/storage"
	"marketchat/tools/ids"
)

func main() {
	cfg := config.Default()
	ids.SetNodeID(cfg.NodeID)

	ctx := context.Background()
	db, err := mgo.Connect(ctx, &mgo.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		logger.Errorf("[main] mongo: %v", err)
		os.Exit(1)
	}

	messages := &store.MessageRepo{DB: db}
	if err := messages.EnsureIndexes(ctx); err != nil {
		logger.Warnf("[main] message indexes: %v", err)
	}

	deps := chat.ServiceDeps{
		Registry:   chat.NewRegistry(),
		Messages:   messages,
		Users:      &store.UserRepo{DB: db},
		Bookings:   &store.BookingRepo{DB: db},
		ParseToken: security.ParseUserToken(cfg.JwtSecret),
	}

	if cfg.RedisAddr != "" {
		mirror, err := storage.NewOnlineStore(storage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warnf("[main] online mirror disabled: %v", err)
		} else {
			defer mirror.Close()
			deps.Mirror = mirror
		}
	}

	if cfg.NatsURL != "" {
		pub, err := events.NewPublisher(cfg.NatsURL)
		if err != nil {
			logger.Warnf("[main] integration events disabled: %v", err)
		} else {
			defer pub.Close()
			deps.Events = pub
		}
	}

	svc := chat.NewService(deps)
	srv := chat.NewServer(chat.ServerConf{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, svc)

	if err := srv.Run(); err != nil {
		logger.Errorf("[main] server: %v", err)
		os.Exit(1)
	}
}
