package main

// seeddemo loads a handful of demo products for a comercio so a fresh local
// environment has something to sell.

import (
	"context"
	"flag"
	"fmt"
	"os"

	"almapos/internal/config"
	"almapos/internal/infra"
	"almapos/internal/model"
	"almapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	comercio := flag.String("comercio", "", "comercio UUID (required)")
	flag.Parse()

	comercioID, err := uuid.Parse(*comercio)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: seeddemo -comercio <uuid>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "postgres:", err)
		os.Exit(1)
	}

	repo := repository.NewProductoRepository(db)
	ctx := context.Background()

	demo := []model.Producto{
		{ComercioID: comercioID, CodigoBarras: "7790001000011", Nombre: "Gaseosa cola 1.5L", PrecioVenta: decimal.NewFromInt(2500), StockActual: 48, Activo: true},
		{ComercioID: comercioID, CodigoBarras: "7790001000028", Nombre: "Galletitas surtidas 300g", PrecioVenta: decimal.NewFromInt(1800), StockActual: 36, Activo: true},
		{ComercioID: comercioID, CodigoBarras: "7790001000035", Nombre: "Yerba mate 1kg", PrecioVenta: decimal.NewFromInt(5200), StockActual: 24, Activo: true},
		{ComercioID: comercioID, CodigoBarras: "7790001000042", Nombre: "Detergente 750ml", PrecioVenta: decimal.NewFromInt(2100), StockActual: 18, Activo: true},
		{ComercioID: comercioID, CodigoBarras: "7790001000059", Nombre: "Arroz largo fino 1kg", PrecioVenta: decimal.NewFromInt(1600), StockActual: 60, Activo: true},
	}

	for i := range demo {
		if err := repo.Create(ctx, &demo[i]); err != nil {
			fmt.Fprintln(os.Stderr, "seed:", demo[i].Nombre, err)
			os.Exit(1)
		}
		fmt.Printf("%s  %s  (stock %d)\n", demo[i].ID, demo[i].Nombre, demo[i].StockActual)
	}
	fmt.Println("demo catalog loaded")
}
