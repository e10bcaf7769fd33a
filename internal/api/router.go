// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"doctrade-ledger/internal/api/handler"
	"doctrade-ledger/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	walletHandler *handler.WalletHandler,
	stakingHandler *handler.StakingHandler,
	investmentHandler *handler.InvestmentHandler,
	documentHandler *handler.DocumentHandler,
	adminHandler *handler.AdminHandler,
	rdb *redis.Client,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Mutating money operations get a tighter rate limit than reads.
	mutationLimit := middleware.RateLimiter(rdb, 30, time.Minute, "ratelimit:mutation")

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.With(mutationLimit).Post("/accounts", walletHandler.CreateAccount)

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/balance", walletHandler.GetBalance)
		r.Get("/transactions", walletHandler.GetTransactionHistory)
		r.With(mutationLimit).Post("/deposit", walletHandler.RequestDeposit)
		r.With(mutationLimit).Post("/withdraw", walletHandler.RequestWithdrawal)
	})

	r.Route("/staking", func(r chi.Router) {
		r.Get("/plans", stakingHandler.GetPlans)
		r.Get("/positions", stakingHandler.GetPositions)
		r.Get("/rewards", stakingHandler.GetRewards)
		r.With(mutationLimit).Post("/stake", stakingHandler.Stake)
		r.With(mutationLimit).Post("/unstake/{positionID}", stakingHandler.Unstake)
	})

	r.Route("/investments", func(r chi.Router) {
		r.Get("/packages", investmentHandler.GetPackages)
		r.Get("/portfolio", investmentHandler.GetPortfolio)
		r.Get("/returns", investmentHandler.GetReturns)
		r.With(mutationLimit).Post("/purchase", investmentHandler.Purchase)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/investments", documentHandler.GetPortfolio)
		r.Get("/investments/returns", documentHandler.GetReturns)
		r.With(mutationLimit).Post("/{documentID}/purchase", documentHandler.Purchase)
		r.With(mutationLimit).Post("/{documentID}/invest", documentHandler.Invest)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/deposits/process", adminHandler.ProcessDeposit)
		r.Post("/withdrawals/process", adminHandler.ProcessWithdrawal)
	})

	return r
}
