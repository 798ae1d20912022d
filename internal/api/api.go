package api

import (
	"net/http"
	"time"

	"osrs-flipper/internal/models"
	"osrs-flipper/internal/services/flipper"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIHandler holds the services the HTTP layer dispatches to.
type APIHandler struct {
	suggester  *flipper.Suggester
	reconciler *flipper.Reconciler
	store      flipper.FlipStore
	log        *logrus.Logger
}

func NewAPIHandler(suggester *flipper.Suggester, reconciler *flipper.Reconciler, store flipper.FlipStore, log *logrus.Logger) *APIHandler {
	return &APIHandler{
		suggester:  suggester,
		reconciler: reconciler,
		store:      store,
		log:        log,
	}
}

// SetupRoutes registers all API routes on the group.
func SetupRoutes(r *gin.RouterGroup, h *APIHandler) {
	r.POST("/suggestion", h.Suggest)
	r.POST("/prices", h.PriceLookup)

	profit := r.Group("/profit-tracking")
	{
		profit.POST("/client-transactions", h.IngestTransactions)
		profit.GET("/client-flips", h.LoadFlips)
	}
}

// Suggest returns the single next recommended action for the client state
// in the request body.
func (h *APIHandler) Suggest(c *gin.Context) {
	var req models.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}

	sug := h.suggester.Suggest(c.Request.Context(), req)
	c.JSON(http.StatusOK, sug)
}

// IngestTransactions folds a batch of client-reported transactions into the
// user's flip ledger and returns the flips that changed.
func (h *APIHandler) IngestTransactions(c *gin.Context) {
	displayName := c.Query("display_name")
	if displayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}

	var incoming []models.IncomingTransaction
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array of transactions"})
		return
	}

	flips, err := h.reconciler.Ingest(displayName, incoming, time.Now().Unix())
	if err != nil {
		h.log.WithError(err).WithField("user", displayName).Error("transaction ingest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save transactions"})
		return
	}

	// The position changed; the cached suggestion queue no longer applies.
	if len(flips) > 0 {
		h.suggester.InvalidateSession(displayName)
	}

	if flips == nil {
		flips = []models.Flip{}
	}
	c.JSON(http.StatusOK, flips)
}

// LoadFlips returns the user's full flip history, closed flips newest
// first.
func (h *APIHandler) LoadFlips(c *gin.Context) {
	displayName := c.Query("display_name")
	if displayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}

	flips, err := h.store.UserFlips(displayName)
	if err != nil {
		h.log.WithError(err).WithField("user", displayName).Error("flip lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load flips"})
		return
	}
	if flips == nil {
		flips = []models.Flip{}
	}
	c.JSON(http.StatusOK, flips)
}

// PriceLookup quotes a manual buy or sell price for one item.
func (h *APIHandler) PriceLookup(c *gin.Context) {
	var req models.PriceLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}
	if req.Type != "buy" && req.Type != "sell" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be buy or sell"})
		return
	}

	resp, err := h.suggester.PriceLookup(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
