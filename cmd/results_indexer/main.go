package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/config"
	"github.com/oksasatya/mailmerge/internal/domain/entity"
	"github.com/oksasatya/mailmerge/internal/infrastructure/search"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// results_indexer consumes campaign events and writes one Elasticsearch
// document per recipient so /api/results/search can find them.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if len(cfg.ESAddrs()) == 0 || cfg.ESResultsIndex == "" {
		log.Fatal("Elasticsearch not configured")
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("es client: %v", err)
	}
	index := search.NewResultsIndex(es, cfg.ESResultsIndex)

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, 16)
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx := context.Background()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev entity.CampaignEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				helpers.LogError(logger, "bad campaign event", err, nil)
				_ = msg.Nack(false, false)
				continue
			}
			fields := logrus.Fields{"campaign_id": ev.CampaignID, "results": len(ev.Results)}
			if err := index.IndexEvent(ctx, ev); err != nil {
				helpers.LogError(logger, "index campaign failed", err, fields)
				// documents are keyed by campaign and position, so a redelivery is safe
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
			helpers.LogInfo(logger, "campaign indexed", fields)
		}
		close(done)
	}()

	helpers.LogInfo(logger, "results indexer listening", logrus.Fields{"queue": cfg.RabbitMQEventsQueue, "index": cfg.ESResultsIndex})
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
