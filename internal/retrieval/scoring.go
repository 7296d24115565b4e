package retrieval

import (
	"sort"
	"strings"

	"github.com/driveline/driveline-go/internal/models"
)

const (
	scoreBase        = 0.45
	scoreRankPenalty = 0.04
	scoreRankFloor   = 0.15
	scoreIntentBonus = 0.1
	maxIntentBonuses = 2
	scoreKeywordHit  = 0.05
	maxKeywordHits   = 4
	scoreContextHit  = 0.1
	scoreFloor       = 0.1

	maxVehicleDocs = 6
	maxPerTypeDocs = 2
)

// docIntents maps document types to the intent tags they satisfy.
var docIntents = map[models.DocumentType][]string{
	models.DocTypeVehicle:         {IntentVehicle, IntentTestDrive, IntentTrade},
	models.DocTypeDealership:      {IntentDealership, IntentGreeting},
	models.DocTypePersona:         {IntentGreeting, IntentGeneral},
	models.DocTypeService:         {IntentService},
	models.DocTypeFinance:         {IntentFinance, IntentLease, IntentLoan},
	models.DocTypeTrade:           {IntentTrade},
	models.DocTypeCustomerHistory: {},
	models.DocTypeKnowledge:       {},
}

// scoreDocument computes the relevance score for one candidate.
// rank is the candidate's position within its own sub-fetch.
func scoreDocument(
	doc models.RetrievedDocument,
	rank int,
	intents []string,
	keywords []string,
	convCtx *models.ConversationContext,
	contextWeight float64,
) float64 {
	score := scoreBase - scoreRankPenalty*float64(rank)
	if score < scoreRankFloor {
		score = scoreRankFloor
	}

	matched := 0
	for _, tag := range docIntents[doc.Type] {
		if matched >= maxIntentBonuses {
			break
		}
		if hasIntent(intents, tag) {
			score += scoreIntentBonus
			matched++
		}
	}

	content := strings.ToLower(doc.Content)
	hits := 0
	for _, kw := range keywords {
		if hits >= maxKeywordHits {
			break
		}
		if strings.Contains(content, kw) {
			score += scoreKeywordHit
			hits++
		}
	}

	if convCtx != nil && matchesContext(content, doc, convCtx) {
		score += scoreContextHit * contextWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// matchesContext reports whether the document lines up with stated
// preferences, budget, or recent searches.
func matchesContext(content string, doc models.RetrievedDocument, convCtx *models.ConversationContext) bool {
	for _, pref := range convCtx.Preferences {
		if pref != "" && strings.Contains(content, strings.ToLower(pref)) {
			return true
		}
	}
	for _, search := range convCtx.RecentSearches {
		if search != "" && strings.Contains(content, strings.ToLower(search)) {
			return true
		}
	}
	if convCtx.PriceRange != nil && doc.Type == models.DocTypeVehicle {
		if price, ok := doc.Metadata["price"]; ok && price != "" {
			return true
		}
	}
	return false
}

// finalize filters low scores, de-duplicates by id, enforces the per-type
// diversity cap, sorts by descending score, and truncates to maxResults.
func finalize(docs []models.RetrievedDocument, maxResults int) []models.RetrievedDocument {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})

	seen := make(map[string]bool, len(docs))
	perType := make(map[models.DocumentType]int)
	out := make([]models.RetrievedDocument, 0, maxResults)

	for _, doc := range docs {
		if len(out) >= maxResults {
			break
		}
		if doc.Score < scoreFloor {
			continue
		}
		if seen[doc.ID] {
			continue
		}
		typeCap := maxPerTypeDocs
		if doc.Type == models.DocTypeVehicle {
			typeCap = maxVehicleDocs
		}
		if perType[doc.Type] >= typeCap {
			continue
		}
		seen[doc.ID] = true
		perType[doc.Type]++
		out = append(out, doc)
	}

	return out
}
