package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledger/internal/handler"
	"github.com/ledgerbook/ledger/shared/middleware"
	"github.com/ledgerbook/ledger/shared/models"
)

// New builds the HTTP engine. Under session scoping creates issue the session
// cookie and reads require it; unscoped ledgers mount the same handlers bare.
func New(transactionHandler *handler.TransactionHandler, scoping models.Scoping) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	issue, require := sessionMiddleware(scoping)

	transactions := router.Group("/transactions")
	{
		transactions.POST("", append(issue, transactionHandler.CreateTransaction)...)
		transactions.GET("", append(require, transactionHandler.ListTransactions)...)
		transactions.GET("/summary", append(require, transactionHandler.GetSummary)...)
		transactions.GET("/:id", append(require, transactionHandler.GetTransaction)...)
	}

	return router
}

func sessionMiddleware(scoping models.Scoping) (issue, require []gin.HandlerFunc) {
	if scoping != models.ScopingSession {
		return nil, nil
	}
	return []gin.HandlerFunc{middleware.IssueSession()}, []gin.HandlerFunc{middleware.RequireSession()}
}
