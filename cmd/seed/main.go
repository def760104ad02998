// Command seed loads a small demo catalog into MongoDB.
package main

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/infrastructure/config"
	mongodb "github.com/storefront/commerce-api/internal/infrastructure/db/mongo"
	"github.com/storefront/commerce-api/pkg/logger"
)

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
	imageURL    string
}

var catalog = []seedProduct{
	{"Classic Tee", "Cotton crew neck t-shirt", "19.99", 120, "https://images.example.com/tee.jpg"},
	{"Canvas Tote", "Heavy canvas shopping bag", "9.99", 300, "https://images.example.com/tote.jpg"},
	{"Travel Mug", "Insulated 350ml mug", "24.50", 80, "https://images.example.com/mug.jpg"},
	{"Notebook", "A5 dotted notebook", "5.00", 500, "https://images.example.com/notebook.jpg"},
	{"Desk Lamp", "LED lamp with dimmer", "49.00", 40, "https://images.example.com/lamp.jpg"},
}

func main() {
	ctx := context.Background()
	cfg := config.Load(ctx)
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true}).With().Str("cmd", "seed").Logger()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	products := mongodb.NewProductRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("create product indexes")
	}

	for _, sp := range catalog {
		price, err := domain.MoneyFromDecimal(decimal.RequireFromString(sp.price))
		if err != nil {
			log.Fatal().Err(err).Str("product", sp.name).Msg("invalid seed price")
		}
		p, err := products.UpsertByName(ctx, &domain.Product{
			Name:          sp.name,
			Description:   sp.description,
			Price:         price,
			StockQuantity: sp.stock,
			ImageURL:      sp.imageURL,
		})
		if err != nil {
			log.Fatal().Err(err).Str("product", sp.name).Msg("upsert product")
		}
		log.Info().Str("id", p.ID).Str("name", p.Name).Str("price", p.Price.String()).Msg("product seeded")
	}

	log.Info().Int("count", len(catalog)).Msg("seed applied")
}
