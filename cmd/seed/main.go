package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	inventorysvc "github.com/mamadbah2/stockledger/internal/service/inventory"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

// seedRecorder is stored as recorded_by on every sample record.
const seedRecorder = "Admin"

var sampleStock = []models.StockInput{
	{Name: "Urea (46% N)", LocationTag: "Maharashtra", Quantity: 5000, UnitPrice: 850, Notes: "Initial stock for Maharashtra warehouse"},
	{Name: "DAP (18-46-0)", LocationTag: "Punjab", Quantity: 3500, UnitPrice: 1500, Notes: "New shipment received"},
	{Name: "MOP (Muriate of Potash)", LocationTag: "Gujarat", Quantity: 4200, UnitPrice: 1200, Notes: "Stock for Gujarat region"},
}

func main() {
	envFile := flag.String("env", "", "optional env file to load")
	reset := flag.Bool("reset", true, "delete existing stock records before seeding")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.Log.Level)).Named("seed")
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB, log)
	if err != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() { _ = client.Close(context.Background()) }()

	stocks := client.Stocks()
	if *reset {
		n, err := stocks.DeleteAll(ctx)
		if err != nil {
			log.Fatal("failed to clear stock records", zap.Error(err))
		}
		log.Info("cleared existing stock records", zap.Int64("deleted", n))
	}

	svc := inventorysvc.NewService(stocks, client.Categories(), validation.New(cfg.Inventory.Locations), nil,
		inventorysvc.Options{Thresholds: cfg.Inventory.Thresholds()},
		log)

	session := &models.Session{Username: seedRecorder}
	for _, in := range sampleStock {
		view, _, err := svc.Create(ctx, in, session, "")
		if err != nil {
			log.Fatal("failed to insert sample record", zap.String("name", in.Name), zap.Error(err))
		}
		log.Info("inserted stock record",
			zap.String("name", view.Name),
			zap.String("location", view.LocationTag),
			zap.Float64("quantity", view.Quantity),
			zap.Float64("total_value", view.TotalValue))
	}

	log.Info("seeding complete", zap.Int("records", len(sampleStock)))
}
