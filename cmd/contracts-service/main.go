package main

import (
	"fmt"
	"os"

	"github.com/lmarchal/robeo-contracts/internal/auth"
	"github.com/lmarchal/robeo-contracts/internal/availability"
	"github.com/lmarchal/robeo-contracts/internal/config"
	"github.com/lmarchal/robeo-contracts/internal/db"
	"github.com/lmarchal/robeo-contracts/internal/excel"
	httphandler "github.com/lmarchal/robeo-contracts/internal/http"
	"github.com/lmarchal/robeo-contracts/internal/http/middleware"
	"github.com/lmarchal/robeo-contracts/internal/logger"
	"github.com/lmarchal/robeo-contracts/internal/pdf"
	"github.com/lmarchal/robeo-contracts/internal/repository"
	"github.com/lmarchal/robeo-contracts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	bookingRepo := repository.NewBookingRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	contractRepo := repository.NewContractRepository(database, bookingRepo)

	resolver := availability.NewResolver(bookingRepo)
	quoteService := service.NewQuoteService(catalogRepo)
	contractService := service.NewContractService(
		catalogRepo,
		contractRepo,
		resolver,
		quoteService,
		pdf.NewGenerator(),
		excel.NewGenerator(),
		cfg,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, quoteService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
