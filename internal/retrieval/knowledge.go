package retrieval

import (
	"fmt"

	"github.com/driveline/driveline-go/internal/models"
)

// Canned knowledge snippets for service and finance questions. These ground
// the generation layer when no structured record applies.

var serviceKnowledge = []string{
	"Routine maintenance includes oil changes every 5,000-7,500 miles, tire rotation every 5,000-8,000 miles, and brake inspection twice a year.",
	"Service appointments can be scheduled online or by phone; most routine services are completed same-day.",
	"Factory-trained technicians handle warranty work, recalls, and multi-point inspections at no charge for covered items.",
	"A loaner vehicle or shuttle service is available for repairs expected to take longer than four hours.",
}

var financeKnowledge = []string{
	"Financing options include standard auto loans with terms from 36 to 84 months and lease programs on most new models.",
	"APR depends on credit score, loan term, and vehicle age; pre-approval takes minutes and does not obligate a purchase.",
	"Leasing typically offers lower monthly payments than buying, with mileage allowances from 10,000 to 15,000 miles per year.",
	"Trade-in equity can be applied toward a down payment on either a purchase or a lease.",
}

// knowledgeDocs wraps canned snippets as retrieval candidates.
func knowledgeDocs(docType models.DocumentType, snippets []string, limit int) []models.RetrievedDocument {
	if limit > len(snippets) || limit <= 0 {
		limit = len(snippets)
	}
	docs := make([]models.RetrievedDocument, 0, limit)
	for i := 0; i < limit; i++ {
		docs = append(docs, models.RetrievedDocument{
			ID:      fmt.Sprintf("%s:%d", docType, i),
			Content: snippets[i],
			Type:    docType,
		})
	}
	return docs
}
