package flipper

import (
	"context"
	"fmt"
	"time"

	"osrs-flipper/internal/models"
	"osrs-flipper/internal/quant"
	"osrs-flipper/internal/services/predictor"
	"osrs-flipper/internal/services/wiki"

	"github.com/sirupsen/logrus"
)

const coinsItemID = 995

// MarketData is the price-feed surface the suggester needs; the wiki client
// implements it.
type MarketData interface {
	EnsureFresh(ctx context.Context) error
	MarketData() (map[int]wiki.LatestPrice, map[int]wiki.MappingItem, bool)
	Timeseries(ctx context.Context, itemID int) ([]quant.PricePoint, error)
	BulkTimeseries(ctx context.Context, itemIDs []int) map[int][]quant.PricePoint
}

// Suggester turns the client's reported state into the single next action:
// collect a finished offer, sell held inventory, buy the best candidate, or
// wait with a reason.
type Suggester struct {
	store    FlipStore
	market   MarketData
	pred     predictor.Predictor
	tracker  *Tracker
	sessions *SessionManager
	cfg      *quant.TradingConfig
	log      *logrus.Logger

	now func() time.Time
}

func NewSuggester(store FlipStore, market MarketData, pred predictor.Predictor, cfg *quant.TradingConfig, log *logrus.Logger) *Suggester {
	return &Suggester{
		store:    store,
		market:   market,
		pred:     pred,
		tracker:  NewTracker(store, cfg, log),
		sessions: NewSessionManager(cfg),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Suggest always returns a well-formed suggestion; when nothing is
// actionable the type is "wait" and the message says why.
func (s *Suggester) Suggest(ctx context.Context, req models.SuggestionRequest) models.Suggestion {
	now := s.now()

	if err := s.market.EnsureFresh(ctx); err != nil {
		s.log.WithError(err).Warn("market refresh failed, serving from cache")
	}
	latest, mapping, ok := s.market.MarketData()
	if !ok {
		return wait("Market data is unavailable, try again shortly")
	}

	// Finished offers come first; they free slots and cash.
	if sug, ok := s.collectSuggestion(req); ok {
		return sug
	}

	emptySlots := countEmptySlots(req.Offers)
	if emptySlots == 0 {
		return wait("All exchange slots are busy")
	}

	if sug, ok := s.sellSuggestion(ctx, req, latest, mapping); ok {
		return sug
	}
	if req.SellOnlyMode {
		return wait("Sell-only mode: no held items left to sell")
	}

	cash := coins(req.Inventory)
	cashPerSlot := quant.CashPerSlot(cash, emptySlots)
	if cashPerSlot < s.cfg.MinCashPerSlot {
		return wait(fmt.Sprintf("Need at least %d gp per empty slot, have %d", s.cfg.MinCashPerSlot, cashPerSlot))
	}

	session := s.sessions.Get(req.DisplayName)

	// A fresh queue serves the next candidate per poll; an explicit skip
	// also keeps the current item out of the next rebuilds.
	if req.SkipSuggestion {
		if c, ok := session.Skip(now); ok {
			return s.buySuggestion(c)
		}
	} else if c, ok := session.Advance(now); ok {
		return s.buySuggestion(c)
	}

	candidates := s.scan(ctx, req, latest, mapping, cashPerSlot, now)
	session.Rebuild(candidates, now)
	if c, ok := session.Serve(now); ok {
		return s.buySuggestion(c)
	}
	return wait("No viable flips found right now")
}

// InvalidateSession drops the user's suggestion queue. Called after new
// transactions land so the next request reflects the changed position.
func (s *Suggester) InvalidateSession(displayName string) {
	s.sessions.Get(displayName).Invalidate()
}

// PriceLookup quotes a manual buy or sell price for one item.
func (s *Suggester) PriceLookup(ctx context.Context, req models.PriceLookupRequest) (models.PriceLookupResponse, error) {
	if err := s.market.EnsureFresh(ctx); err != nil {
		s.log.WithError(err).Warn("market refresh failed, serving from cache")
	}
	latest, mapping, ok := s.market.MarketData()
	if !ok {
		return models.PriceLookupResponse{}, fmt.Errorf("market data unavailable")
	}

	quote, ok := s.quoteFor(ctx, req.ItemID, latest)
	if !ok {
		return models.PriceLookupResponse{}, fmt.Errorf("no price data for item %d", req.ItemID)
	}

	resp := models.PriceLookupResponse{
		ItemID: req.ItemID,
		Name:   mapping[req.ItemID].Name,
		Type:   req.Type,
	}
	if req.Type == quant.TxSell {
		resp.SuggestedPrice = quote.SellPrice
	} else {
		resp.SuggestedPrice = quote.BuyPrice
	}
	return resp, nil
}

func (s *Suggester) collectSuggestion(req models.SuggestionRequest) (models.Suggestion, bool) {
	for _, offer := range req.Offers {
		finished := offer.Status == "completed" || offer.Status == "partial"
		if finished && offer.CollectedAmount > 0 {
			return models.Suggestion{
				Type:    "collect",
				ItemID:  offer.ItemID,
				Slot:    offer.Slot,
				Message: "Collect the finished offer",
			}, true
		}
	}
	return models.Suggestion{}, false
}

// sellSuggestion finds held inventory that belongs to an open flip and
// prices an exit for it.
func (s *Suggester) sellSuggestion(ctx context.Context, req models.SuggestionRequest, latest map[int]wiki.LatestPrice, mapping map[int]wiki.MappingItem) (models.Suggestion, bool) {
	held := make(map[int]int, len(req.Inventory))
	for _, item := range req.Inventory {
		if item.ID != coinsItemID && item.Amount > 0 {
			held[item.ID] = item.Amount
		}
	}
	if len(held) == 0 {
		return models.Suggestion{}, false
	}

	// Items already listed in a sell offer are in flight, not held.
	for _, offer := range req.Offers {
		if offer.BuySell == quant.TxSell && offer.Status != "empty" {
			delete(held, offer.ItemID)
		}
	}

	flips, err := s.store.UserFlips(req.DisplayName)
	if err != nil {
		s.log.WithError(err).WithField("user", req.DisplayName).Warn("flip lookup failed during sell pass")
		return models.Suggestion{}, false
	}

	// The most liquid held position exits fastest, so it goes first.
	best := models.Suggestion{}
	bestVolume := int64(-1)
	for _, flip := range flips {
		if flip.IsClosed {
			continue
		}
		amount, ok := held[flip.ItemID]
		if !ok {
			continue
		}

		quote, ok := s.quoteFor(ctx, flip.ItemID, latest)
		if !ok {
			continue
		}
		var volume int64
		if points, err := s.market.Timeseries(ctx, flip.ItemID); err == nil {
			volume = quant.HourlyVolume(points)
		}
		if volume <= bestVolume {
			continue
		}
		name := flip.ItemName
		if name == "" {
			name = mapping[flip.ItemID].Name
		}
		best = models.Suggestion{
			Type:     quant.TxSell,
			ItemID:   flip.ItemID,
			Name:     name,
			Price:    quote.SellPrice,
			Quantity: amount,
			Message:  fmt.Sprintf("Sell %d x %s at %d gp", amount, name, quote.SellPrice),
		}
		bestVolume = volume
	}
	return best, bestVolume >= 0
}

// scan builds and ranks buy candidates across the commodity universe.
func (s *Suggester) scan(ctx context.Context, req models.SuggestionRequest, latest map[int]wiki.LatestPrice, mapping map[int]wiki.MappingItem, cashPerSlot int64, now time.Time) []quant.Candidate {
	excluded := make(map[int]bool)
	for _, id := range req.BlockedItems {
		excluded[id] = true
	}
	for _, id := range req.SkippedItems {
		excluded[id] = true
	}
	// One open position per item; an active buy offer also claims the item.
	flips, err := s.store.UserFlips(req.DisplayName)
	if err == nil {
		for _, flip := range flips {
			if !flip.IsClosed {
				excluded[flip.ItemID] = true
			}
		}
	}
	targets := quant.TargetCommodities()
	staple := make(map[int]bool, len(targets))
	byID := make(map[int]quant.TargetItem, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
		if t.Priority >= 9 {
			staple[t.ID] = true
		}
	}

	// Too many buys already parked on slower items means the next buy must
	// be a staple, or slots end up stuck for hours.
	lowVolumeActive := 0
	for _, offer := range req.Offers {
		if offer.Status != "empty" {
			excluded[offer.ItemID] = true
			if offer.BuySell == quant.TxBuy && !staple[offer.ItemID] {
				lowVolumeActive++
			}
		}
	}
	stapleOnly := lowVolumeActive >= s.cfg.MaxLowVolumeActive

	ids := make([]int, 0, len(targets))
	for _, t := range targets {
		if excluded[t.ID] {
			continue
		}
		if stapleOnly && !staple[t.ID] {
			continue
		}
		if _, ok := latest[t.ID]; !ok {
			continue
		}
		ids = append(ids, t.ID)
	}

	series := s.market.BulkTimeseries(ctx, ids)

	views := make([]quant.ItemView, 0, len(series))
	for id, points := range series {
		target := byID[id]
		quote, ok := quant.PricesFromSnapshots(points, s.cfg)
		if !ok {
			continue
		}

		limit := target.Limit
		if m, ok := mapping[id]; ok && m.Limit > 0 {
			limit = m.Limit
		}
		name := target.Name
		if m, ok := mapping[id]; ok && m.Name != "" {
			name = m.Name
		}

		views = append(views, quant.ItemView{
			ID:           id,
			Name:         name,
			BuyLimit:     limit,
			Priority:     target.Priority,
			BuyPrice:     quote.BuyPrice,
			SellPrice:    quote.SellPrice,
			HourlyVolume: quant.HourlyVolume(points),
			Features:     quant.ComputeFeatures(points),
		})
	}

	in := quant.ScanInput{
		CashPerSlot:    cashPerSlot,
		RecentlyBought: s.tracker.RecentlyBought(req.DisplayName, now),
		Excluded:       excluded,
		Horizon:        quant.HorizonFromTimeframe(req.Timeframe),
		Now:            now,
	}
	return quant.BuildCandidates(views, in, s.cfg, s.predictFunc(ctx))
}

func (s *Suggester) predictFunc(ctx context.Context) quant.PredictFunc {
	if s.pred == nil {
		return nil
	}
	return func(f quant.PredictorFeatures) (float64, error) {
		return s.pred.Predict(ctx, f)
	}
}

// quoteFor prices an item from its timeseries, falling back to the latest
// instant prices when the series is too thin.
func (s *Suggester) quoteFor(ctx context.Context, itemID int, latest map[int]wiki.LatestPrice) (quant.PriceQuote, bool) {
	points, err := s.market.Timeseries(ctx, itemID)
	if err == nil {
		if quote, ok := quant.PricesFromSnapshots(points, s.cfg); ok {
			return quote, true
		}
	}
	lp, ok := latest[itemID]
	if !ok || lp.High <= 0 || lp.Low <= 0 {
		return quant.PriceQuote{}, false
	}
	return quant.PriceQuote{BuyPrice: lp.Low + 1, SellPrice: lp.High - 1}, true
}

func (s *Suggester) buySuggestion(c quant.Candidate) models.Suggestion {
	return models.Suggestion{
		Type:     quant.TxBuy,
		ItemID:   c.ItemID,
		Name:     c.Name,
		Price:    c.BuyPrice,
		Quantity: c.Quantity,
		Message:  fmt.Sprintf("Buy %d x %s at %d gp, target sell %d gp", c.Quantity, c.Name, c.BuyPrice, c.SellPrice),
	}
}

func wait(message string) models.Suggestion {
	return models.Suggestion{Type: "wait", Message: message}
}

func countEmptySlots(offers []models.Offer) int {
	n := 0
	for _, offer := range offers {
		if offer.Status == "empty" {
			n++
		}
	}
	return n
}

func coins(inventory []models.InventoryItem) int64 {
	for _, item := range inventory {
		if item.ID == coinsItemID {
			return int64(item.Amount)
		}
	}
	return 0
}
