// Comando vatrate consulta el tipo de IVA aplicable entre dos países a una
// fecha, con la misma cadena de resolución que usa el motor (TEDB con caché).
//
// Uso:
//
//	vatrate -seller IT -buyer Italy [-date 2026-03-01]
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/internal/application/tax"
	"github.com/dome-marketplace/invoicing-engine/internal/countries"
	"github.com/dome-marketplace/invoicing-engine/internal/infrastructure/tedb"
	"github.com/dome-marketplace/invoicing-engine/pkg/config"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

func main() {
	sellerFlag := flag.String("seller", "", "país del vendedor (código alfa-2 o nombre)")
	buyerFlag := flag.String("buyer", "", "país del comprador (código alfa-2 o nombre)")
	dateFlag := flag.String("date", "", "fecha de la operación, YYYY-MM-DD (por defecto hoy)")
	flag.Parse()

	if *sellerFlag == "" || *buyerFlag == "" {
		fmt.Fprintln(os.Stderr, "uso: vatrate -seller <país> -buyer <país> [-date YYYY-MM-DD]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	date := time.Now()
	if *dateFlag != "" {
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fecha inválida %q: %v\n", *dateFlag, err)
			os.Exit(2)
		}
	}

	seller := countries.Resolve(*sellerFlag)
	buyer := countries.Resolve(*buyerFlag)
	if seller == "" || buyer == "" {
		fmt.Fprintf(os.Stderr, "país no reconocido: vendedor %q, comprador %q\n", *sellerFlag, *buyerFlag)
		os.Exit(2)
	}

	client := tedb.NewClient(
		tedb.WithBaseURL(cfg.Tax.BaseURL),
		tedb.WithHTTPClient(&http.Client{Timeout: cfg.Tax.HTTPTimeout}),
		tedb.WithLogger(log.Component("tedb")),
	)
	cached := tedb.NewCachedClient(client, tedb.CachePolicy{
		Configurations: tedb.TierPolicy{Size: cfg.Tax.ConfigCacheSize, TTL: cfg.Tax.ConfigCacheTTL},
		Search:         tedb.TierPolicy{Size: cfg.Tax.SearchCacheSize, TTL: cfg.Tax.SearchCacheTTL},
		Rate:           tedb.TierPolicy{Size: cfg.Tax.RateCacheSize, TTL: cfg.Tax.RateCacheTTL},
	})
	source := tedb.NewRateSource(cached, log.Component("tedb"))
	manager := tax.NewRateManager(source, nil, nil, log.Component("tax"))

	// Tres llamadas encadenadas como máximo (configurations, search, rate).
	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.Tax.HTTPTimeout)
	defer cancel()

	rate, err := manager.VATRateForCountries(ctx, seller, buyer, date)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo resolver el tipo de IVA")
		os.Exit(1)
	}

	fmt.Printf("%s -> %s a %s: IVA %s%%\n",
		seller, buyer, date.Format("2006-01-02"),
		rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
}
