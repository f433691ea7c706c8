package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	saveadjustments "billing-backend/http-server/adjustments/save"
	upadjustments "billing-backend/http-server/adjustments/update"
	getadmin "billing-backend/http-server/admin/get"
	getaggregation "billing-backend/http-server/aggregation/get"
	upaggregation "billing-backend/http-server/aggregation/update"
	reportexcel "billing-backend/http-server/report/excel"
	getworkorders "billing-backend/http-server/workorders/get"
	"billing-backend/internal/config"
	"billing-backend/internal/middleware/auth"
	"billing-backend/internal/service/aggregate"
	"billing-backend/internal/service/report"
	"billing-backend/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, aggService *aggregate.Service, excelService *report.ExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User", "X-Role"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/workorders", getworkorders.GetWorkOrders(log, storage))

	router.Get("/api/workorders/{id}/aggregation", getaggregation.GetAggregation(log, aggService))
	router.Put("/api/workorders/{id}/aggregation", upaggregation.SaveAggregation(log, aggService))

	router.Post("/api/workorders/{id}/adjustments", saveadjustments.SaveComment(log, storage))
	router.Put("/api/adjustments/{id}", upadjustments.UpdateAdjustment(log, storage))
	router.Delete("/api/adjustments/{id}", upadjustments.DeleteAdjustment(log, storage))

	router.Get("/api/workorders/{id}/report/excel", reportexcel.GenerateStatementExcel(log, excelService))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
	adminRouter.Get("/rates", getadmin.GetRateHistoryAdmin(log, storage))
	router.Mount("/api/admin", adminRouter)

	return router
}
