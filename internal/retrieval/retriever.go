package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
)

// Store is the slice of the datastore the retriever consumes.
type Store interface {
	QuerySearchVehicles(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, error)
	QueryGetDealership(ctx context.Context, id string) (*models.Dealership, error)
	QueryGetPersona(ctx context.Context, dealershipID string) (*models.Persona, error)
}

// Summarizer condenses conversation history. Optional; plain truncation is
// used when nil or on failure.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Options configures a Retriever.
type Options struct {
	DealershipID          string
	MaxResults            int
	DealershipInfoEnabled bool
}

// Retriever gathers and scores grounding documents for one dealership.
// Safe for concurrent use; holds no per-request state.
type Retriever struct {
	store      Store
	summarizer Summarizer
	collector  *metrics.Collector
	logger     *slog.Logger
	opts       Options
}

// New creates a Retriever scoped to one dealership.
func New(store Store, summarizer Summarizer, collector *metrics.Collector, logger *slog.Logger, opts Options) *Retriever {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:      store,
		summarizer: summarizer,
		collector:  collector,
		logger:     logger,
		opts:       opts,
	}
}

// Retrieve returns up to MaxResults scored documents for the query, sorted by
// descending score, de-duplicated by id, with per-type diversity caps applied.
// Total failure returns an empty list, never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, convCtx *models.ConversationContext) []models.RetrievedDocument {
	start := time.Now()
	defer func() {
		if r.collector != nil {
			r.collector.RecordTiming(metrics.OpRetrieve, time.Since(start))
		}
	}()

	keywords := ExtractKeywords(query)
	intents := DetectIntents(keywords, query, convCtx)
	strat := buildStrategy(intents, convCtx, r.opts.DealershipInfoEnabled)

	r.logger.Debug("retrieval plan",
		"dealership", r.opts.DealershipID,
		"intents", intents,
		"keywords", len(keywords))

	type fetch struct {
		name string
		run  func(context.Context) []models.RetrievedDocument
	}

	fetches := make([]fetch, 0, 6)
	if strat.FetchDealership {
		fetches = append(fetches, fetch{"dealership", r.fetchDealership})
	}
	if strat.FetchVehicles {
		fetches = append(fetches, fetch{"vehicles", func(ctx context.Context) []models.RetrievedDocument {
			return r.fetchVehicles(ctx, keywords, convCtx, strat.PerFetchLimit)
		}})
	}
	if strat.FetchPersona {
		fetches = append(fetches, fetch{"persona", r.fetchPersona})
	}
	if strat.FetchService {
		fetches = append(fetches, fetch{"service", func(context.Context) []models.RetrievedDocument {
			return knowledgeDocs(models.DocTypeService, serviceKnowledge, strat.PerFetchLimit)
		}})
	}
	if strat.FetchFinance {
		fetches = append(fetches, fetch{"finance", func(context.Context) []models.RetrievedDocument {
			return knowledgeDocs(models.DocTypeFinance, financeKnowledge, strat.PerFetchLimit)
		}})
	}
	if strat.FetchHistory {
		fetches = append(fetches, fetch{"history", func(ctx context.Context) []models.RetrievedDocument {
			return r.fetchHistory(ctx, convCtx)
		}})
	}

	// Run sub-fetches concurrently. Each one recovers its own failure and
	// contributes nothing; siblings are never cancelled.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	candidates := make([]models.RetrievedDocument, 0, len(fetches)*strat.PerFetchLimit)

	for _, f := range fetches {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(f fetch) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("sub-fetch panicked", "fetch", f.name, "panic", rec)
					if r.collector != nil {
						r.collector.Increment(metrics.CounterRetrievalFetchFail, map[string]string{"fetch": f.name})
					}
				}
			}()
			docs := f.run(ctx)
			mu.Lock()
			candidates = append(candidates, docs...)
			mu.Unlock()
		}(f)
	}
	wg.Wait()

	// Score every candidate against intents, keywords, and context.
	rankWithin := make(map[models.DocumentType]int)
	for i := range candidates {
		rank := rankWithin[candidates[i].Type]
		rankWithin[candidates[i].Type]++
		candidates[i].Score = scoreDocument(candidates[i], rank, intents, keywords, convCtx, strat.ContextWeight)
	}

	return finalize(candidates, r.opts.MaxResults)
}

func (r *Retriever) fetchDealership(ctx context.Context) []models.RetrievedDocument {
	d, err := r.store.QueryGetDealership(ctx, r.opts.DealershipID)
	if err != nil {
		r.fetchFailed("dealership", err)
		return nil
	}
	if d == nil {
		return nil
	}

	content := fmt.Sprintf("%s. %s. Phone: %s. Hours: %s.", d.Name, d.Address, d.Phone, d.Hours)
	return []models.RetrievedDocument{{
		ID:      "dealership:" + d.ID,
		Content: content,
		Type:    models.DocTypeDealership,
		Metadata: map[string]string{
			"name":  d.Name,
			"phone": d.Phone,
		},
	}}
}

func (r *Retriever) fetchVehicles(ctx context.Context, keywords []string, convCtx *models.ConversationContext, limit int) []models.RetrievedDocument {
	filter := buildVehicleFilter(r.opts.DealershipID, keywords, convCtx, limit)

	vehicles, err := r.store.QuerySearchVehicles(ctx, filter)
	if err != nil {
		r.fetchFailed("vehicles", err)
		return nil
	}

	docs := make([]models.RetrievedDocument, 0, len(vehicles))
	for _, v := range vehicles {
		docs = append(docs, models.RetrievedDocument{
			ID:      "vehicle:" + v.ID,
			Content: v.Summary() + " " + v.Description,
			Type:    models.DocTypeVehicle,
			Metadata: map[string]string{
				"make":  v.Make,
				"model": v.Model,
				"year":  fmt.Sprintf("%d", v.Year),
				"price": fmt.Sprintf("%.0f", v.Price),
			},
		})
	}
	return docs
}

func (r *Retriever) fetchPersona(ctx context.Context) []models.RetrievedDocument {
	p, err := r.store.QueryGetPersona(ctx, r.opts.DealershipID)
	if err != nil {
		r.fetchFailed("persona", err)
		return nil
	}
	if p == nil {
		return nil
	}

	content := fmt.Sprintf("Assistant persona %q. Tone: %s. Greeting: %s. %s",
		p.Name, p.Tone, p.Greeting, p.Instructions)
	return []models.RetrievedDocument{{
		ID:      "persona:" + p.ID,
		Content: content,
		Type:    models.DocTypePersona,
	}}
}

// historySummaryThreshold is the combined history length above which the
// summarizer is used instead of plain truncation.
const historySummaryThreshold = 600

func (r *Retriever) fetchHistory(ctx context.Context, convCtx *models.ConversationContext) []models.RetrievedDocument {
	if convCtx == nil || len(convCtx.History) == 0 {
		return nil
	}

	var b strings.Builder
	for _, turn := range convCtx.History {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	transcript := b.String()

	content := transcript
	if len(transcript) > historySummaryThreshold && r.summarizer != nil {
		summary, err := r.summarizer.Summarize(ctx, transcript)
		if err != nil {
			r.fetchFailed("history", err)
			content = TruncateUTF8(transcript, historySummaryThreshold)
		} else {
			content = summary
		}
	} else if len(transcript) > historySummaryThreshold {
		content = TruncateUTF8(transcript, historySummaryThreshold)
	}

	id := "history:" + convCtx.ConversationID
	if convCtx.ConversationID == "" {
		id = "history:inline"
	}
	return []models.RetrievedDocument{{
		ID:      id,
		Content: content,
		Type:    models.DocTypeCustomerHistory,
	}}
}

func (r *Retriever) fetchFailed(name string, err error) {
	r.logger.Warn("sub-fetch failed", "fetch", name, "dealership", r.opts.DealershipID, "error", err)
	if r.collector != nil {
		r.collector.Increment(metrics.CounterRetrievalFetchFail, map[string]string{"fetch": name})
	}
}

// buildVehicleFilter derives an inventory filter from keywords and contextual
// preferences, price range, year range, and recent-search overlap.
func buildVehicleFilter(dealershipID string, keywords []string, convCtx *models.ConversationContext, limit int) models.VehicleFilter {
	filter := models.VehicleFilter{
		DealershipID: dealershipID,
		Limit:        limit,
	}

	for _, kw := range keywords {
		switch {
		case knownMakes[kw]:
			filter.Makes = append(filter.Makes, kw)
		case knownModels[kw]:
			filter.Models = append(filter.Models, kw)
		case knownBodyStyles[kw]:
			filter.BodyStyle = kw
		case kw == "certified" || kw == "cpo":
			certified := true
			filter.Certified = &certified
		case kw == "electric" || kw == "ev":
			filter.FuelType = "electric"
		case kw == "hybrid" || kw == "diesel":
			filter.FuelType = kw
		case kw == "awd" || kw == "4wd" || kw == "fwd" || kw == "rwd":
			filter.Drivetrain = kw
		}
	}

	if years := ModelYears(keywords); len(years) > 0 {
		minYear, maxYear := years[0], years[0]
		for _, y := range years[1:] {
			if y < minYear {
				minYear = y
			}
			if y > maxYear {
				maxYear = y
			}
		}
		filter.YearMin = minYear
		filter.YearMax = maxYear
	}

	if budget := BudgetFromText(keywords); budget > 0 {
		filter.PriceMax = budget
	}

	if convCtx != nil {
		if filter.PriceMax == 0 && convCtx.PriceRange != nil {
			filter.PriceMin = float64(convCtx.PriceRange.Min)
			filter.PriceMax = float64(convCtx.PriceRange.Max)
		}
		if filter.YearMin == 0 && convCtx.YearRange != nil {
			filter.YearMin = convCtx.YearRange.Min
			filter.YearMax = convCtx.YearRange.Max
		}
		if pref, ok := convCtx.Preferences["body_style"]; ok && filter.BodyStyle == "" {
			filter.BodyStyle = pref
		}
		if pref, ok := convCtx.Preferences["make"]; ok && len(filter.Makes) == 0 {
			filter.Makes = append(filter.Makes, pref)
		}
		// Recent-search overlap widens the make filter.
		for _, search := range convCtx.RecentSearches {
			for _, tok := range ExtractKeywords(search) {
				if knownMakes[tok] && !containsFold(filter.Makes, tok) {
					filter.Makes = append(filter.Makes, tok)
				}
			}
		}
	}

	return filter
}

var knownMakes = map[string]bool{
	"honda": true, "toyota": true, "ford": true, "chevrolet": true, "chevy": true,
	"nissan": true, "hyundai": true, "kia": true, "mazda": true, "subaru": true,
	"volkswagen": true, "bmw": true, "audi": true, "mercedes": true, "lexus": true,
	"acura": true, "jeep": true, "gmc": true, "dodge": true, "tesla": true,
	"volvo": true, "buick": true, "cadillac": true,
}

var knownModels = map[string]bool{
	"civic": true, "accord": true, "camry": true, "corolla": true, "rav4": true,
	"cr-v": true, "crv": true, "f-150": true, "f150": true, "silverado": true,
	"altima": true, "rogue": true, "tucson": true, "sorento": true, "outback": true,
	"tacoma": true, "highlander": true, "pilot": true, "odyssey": true,
}

var knownBodyStyles = map[string]bool{
	"suv": true, "sedan": true, "truck": true, "coupe": true, "van": true,
	"minivan": true, "hatchback": true, "convertible": true, "wagon": true,
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
