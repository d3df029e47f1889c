package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/config"
	"github.com/nurpe/swachh-fleet/internal/db"
	"github.com/nurpe/swachh-fleet/internal/excel"
	httphandler "github.com/nurpe/swachh-fleet/internal/http"
	"github.com/nurpe/swachh-fleet/internal/http/middleware"
	"github.com/nurpe/swachh-fleet/internal/logger"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/pdf"
	"github.com/nurpe/swachh-fleet/internal/repository"
	"github.com/nurpe/swachh-fleet/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	for _, entry := range cfg.Fleet.CapacityOverrides {
		vehicleType, min, max, err := config.ParseCapacityOverride(entry)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid capacity override")
		}
		model.OverrideCapacityRange(model.VehicleType(vehicleType), model.CapacityRange{Min: min, Max: max})
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	userRepo := repository.NewUserRepository(database)
	approvalRepo := repository.NewApprovalRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	feederPointRepo := repository.NewFeederPointRepository(database)
	assignmentRepo := repository.NewAssignmentRepository(database)
	driverAssignmentRepo := repository.NewDriverAssignmentRepository(database)

	identity := auth.NewIdentity(database)

	accessTTL, err := time.ParseDuration(cfg.Auth.AccessTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid JWT_ACCESS_TTL")
	}
	tokens := auth.NewTokens(cfg.Auth.AccessSecret, accessTTL)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	approvalService := service.NewApprovalService(approvalRepo, userRepo, identity, log)
	userService := service.NewUserService(userRepo, identity, log)
	vehicleService := service.NewVehicleService(vehicleRepo, log)
	feederPointService := service.NewFeederPointService(feederPointRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, vehicleRepo, feederPointRepo, log)
	connectionService := service.NewConnectionService(driverAssignmentRepo, userRepo, vehicleRepo, feederPointRepo, log)
	dashboardService := service.NewDashboardService(
		userRepo, approvalRepo, vehicleRepo, feederPointRepo, assignmentRepo,
		connectionService, excel.NewGenerator(), pdf.NewGenerator(), log,
	)

	handler := httphandler.NewHandler(
		approvalService, userService, vehicleService, feederPointService,
		assignmentService, connectionService, dashboardService,
		identity, tokens, log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
