package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/platform/db"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/internal/shared"
)

func main() {
	apiURL := getenv("DELIVERY_API_URL", "http://localhost:3001/api")
	loc, err := time.LoadLocation(getenv("APP_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}
	ctx := context.Background()

	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		fmt.Println("→ Creating audit schema...")
		pool, err := db.New(ctx, dsn)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		if err := shared.NewAuditLogger(pool).EnsureSchema(ctx); err != nil {
			log.Fatalf("audit schema: %v", err)
		}
		pool.Close()
	}

	fmt.Println("→ Seeding deliveries...")
	client := delivery.NewClient(apiURL)
	today := time.Now().In(loc)
	created := 0
	for _, d := range sampleDeliveries(locale.Day(today, loc), locale.Day(today.AddDate(0, 0, 1), loc)) {
		if err := delivery.Validate(d); err != nil {
			log.Fatalf("invalid sample %s: %v", d.ItemName, err)
		}
		saved, err := client.Create(ctx, d)
		if err != nil {
			log.Fatalf("create delivery: %v", err)
		}
		created++
		fmt.Printf("  %s %s → %s (%s)\n", saved.RequestedAt, saved.SourceLocation, saved.DestinationLocation, saved.ItemName)
	}

	fmt.Printf("✓ Seeded %d deliveries at %s\n", created, time.Now().Format(time.RFC3339))
}

func sampleDeliveries(today, tomorrow string) []delivery.Delivery {
	return []delivery.Delivery{
		{
			RequestedAt:         delivery.NewTimestamp(today, "07:30"),
			SourceLocation:      "Depósito Central",
			DestinationLocation: "Obra Residencial Norte",
			ItemName:            "Cimento CP-II",
			ItemQuantity:        40,
			ItemUnit:            delivery.UnitBag,
			ResponsibleName:     "Carlos Souza",
			ResponsiblePhone:    "(11) 98765-4321",
		},
		{
			RequestedAt:         delivery.NewTimestamp(today, "09:00"),
			SourceLocation:      "Pátio Sul",
			DestinationLocation: "Obra Comercial Centro",
			ItemName:            "Areia média",
			ItemQuantity:        6,
			ItemUnit:            delivery.UnitCubicMeter,
			ResponsibleName:     "Ana Lima",
			ResponsiblePhone:    "(11) 91234-5678",
		},
		{
			RequestedAt:         delivery.NewTimestamp(today, "13:15"),
			SourceLocation:      "Depósito Central",
			DestinationLocation: "Obra Residencial Norte",
			ItemName:            "Vergalhão 10mm",
			ItemQuantity:        120,
			ItemUnit:            delivery.UnitPiece,
			ResponsibleName:     "Carlos Souza",
			ResponsiblePhone:    "(11) 98765-4321",
		},
		{
			RequestedAt:         delivery.NewTimestamp(tomorrow, "08:00"),
			SourceLocation:      "Pátio Sul",
			DestinationLocation: "Obra Escola Leste",
			ItemName:            "Bloco de concreto",
			ItemQuantity:        1200,
			ItemUnit:            delivery.UnitEach,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
