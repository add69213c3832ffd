// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/ledgerrepo"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/observer"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Repos is the storage backing both services.
type Repos struct {
	Accounts     accountservice.Repo
	Transactions transactionservice.Repo
}

// PGSRepos returns PostgreSQL backed repositories.
func PGSRepos(conn *sql.DB, lockTimeout time.Duration) Repos {
	return Repos{
		Accounts:     accountrepo.NewRepoPGS(conn),
		Transactions: ledgerrepo.NewRepoPGS(conn, lockTimeout),
	}
}

// MemRepos returns repositories backed by a single in-memory store.
func MemRepos(store *memstore.Store) Repos {
	return Repos{
		Accounts:     store,
		Transactions: store,
	}
}

// New creates Server type with instantiated domains and routes.
//
// conn may be nil when repos do not use PostgreSQL.
func New(repos Repos, conn *sql.DB, logger zerolog.Logger, config configpkg.Config, obs observer.Observer) (*Server, error) {
	accountService := accountservice.New(repos.Accounts, obs)
	transactionService := transactionservice.New(repos.Transactions, accountService, obs, config.OperationTimeout)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	corsHandler, err := middleware.CORS(config.CORSAllowOrigins)
	if err != nil {
		return nil, err
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(corsHandler)

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts/:id", accountHandler.Balance)

	engine.POST("/transactions", transactionHandler.Create)
	engine.GET("/transactions/:account_id", transactionHandler.List)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
