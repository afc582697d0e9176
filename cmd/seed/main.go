// Command seed carga un catálogo CSV en un tenant. El stock de apertura se registra
// como movimientos ADJUSTMENT para que el libro cuadre con los contadores desde el inicio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant destino (obligatorio)")
	file := flag.String("file", "catalog.csv", "CSV product_id,name,sku,attributes,price,stock")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	supplier := flag.String("supplier", "", "nombre de un proveedor a crear (opcional)")
	token := flag.Bool("token", false, "imprime un JWT de desarrollo con rol OWNER para el tenant")
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "falta -tenant")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración")
	}

	adjustUC := inventory.NewAdjustStockUseCase(postgres.NewTxRunner(pool), nil, nil, log)
	imported, err := catalog.LoadFile(ctx, adjustUC, catalog.FileOptions{
		Path:     *file,
		TenantID: *tenantID,
		Latin1:   *latin1,
		Supplier: *supplier,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed abortado, no se guardó nada")
	}
	if imported.Supplier != nil {
		log.Info().Str("supplier_id", imported.Supplier.ID).Msg("proveedor creado")
	}

	if *token {
		tok, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{
			UserID:   "seed",
			TenantID: *tenantID,
			Role:     jwt.RoleOwner,
		}, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Println(tok)
	}
}
