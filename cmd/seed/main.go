// Seeds the catalog with sample garment products for local development.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	"github.com/garmenttrack/go-order-tracker/internal/config"
	"github.com/garmenttrack/go-order-tracker/internal/postgres"
)

var sampleProducts = []catalog.Product{
	{
		Name:            "Premium Cotton Shirt",
		Description:     "High-quality cotton shirt with modern fit, made from 100% pure cotton fabric.",
		Category:        "Shirt",
		PriceCents:      120000,
		AvailableQty:    150,
		MinimumOrderQty: 10,
		ImageURL:        "https://images.unsplash.com/photo-1602810318383-e386cc2a3ccf?w=500",
		DemoVideoLink:   "https://www.youtube.com/watch?v=example1",
		ShowOnHome:      true,
	},
	{
		Name:            "Slim Fit Denim Jeans",
		Description:     "Stylish slim fit jeans with premium denim fabric.",
		Category:        "Pant",
		PriceCents:      180000,
		AvailableQty:    200,
		MinimumOrderQty: 5,
		ImageURL:        "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500",
		ShowOnHome:      true,
	},
	{
		Name:            "Winter Jacket Premium",
		Description:     "Water-resistant and wind-proof premium winter jacket.",
		Category:        "Jacket",
		PriceCents:      350000,
		AvailableQty:    80,
		MinimumOrderQty: 3,
		ImageURL:        "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=500",
		ShowOnHome:      true,
	},
	{
		Name:            "Casual T-Shirt Pack",
		Description:     "Comfortable cotton t-shirts available in multiple colors.",
		Category:        "Shirt",
		PriceCents:      60000,
		AvailableQty:    300,
		MinimumOrderQty: 20,
		ImageURL:        "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500",
		ShowOnHome:      true,
	},
	{
		Name:            "Formal Trousers",
		Description:     "Classic formal trousers with wrinkle-free fabric.",
		Category:        "Pant",
		PriceCents:      150000,
		AvailableQty:    120,
		MinimumOrderQty: 8,
		ImageURL:        "https://images.unsplash.com/photo-1473966968600-fa801b869a1a?w=500",
		ShowOnHome:      true,
	},
	{
		Name:            "Designer Hoodie",
		Description:     "Premium black hoodie with modern design.",
		Category:        "Hoodie",
		PriceCents:      80000,
		AvailableQty:    250,
		MinimumOrderQty: 15,
		ImageURL:        "https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=500",
		ShowOnHome:      true,
	},
	{
		Name:            "Cargo Pants",
		Description:     "Utility cargo pants with multiple pockets.",
		Category:        "Pant",
		PriceCents:      160000,
		AvailableQty:    90,
		MinimumOrderQty: 6,
		ImageURL:        "https://images.unsplash.com/photo-1506629082955-511b1aa562c8?w=500",
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	repo := &catalog.Repo{DB: db}
	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := repo.Insert(ctx, &p); err != nil {
			log.Fatal("insert product", zap.String("name", p.Name), zap.Error(err))
		}
		log.Info("seeded product", zap.String("id", p.ID), zap.String("name", p.Name))
	}
	log.Info("catalog seeded", zap.Int("products", len(sampleProducts)))
}
