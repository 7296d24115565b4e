package handover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
)

type fakeLeadStore struct {
	dealership    *models.Dealership
	dealershipErr error
	statusErr     error
	stuck         []models.Lead

	statusUpdates []string // "id:status" in call order
}

func (f *fakeLeadStore) QueryUpdateLeadStatus(_ context.Context, id, status string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusUpdates = append(f.statusUpdates, id+":"+status)
	return nil
}

func (f *fakeLeadStore) QueryLeadsByStatus(_ context.Context, status string, limit int) ([]models.Lead, error) {
	if status != models.LeadStatusHandoverInitiated {
		return nil, nil
	}
	if limit < len(f.stuck) {
		return f.stuck[:limit], nil
	}
	return f.stuck, nil
}

func (f *fakeLeadStore) QueryGetDealership(_ context.Context, _ string) (*models.Dealership, error) {
	return f.dealership, f.dealershipErr
}

type fakeNotifier struct {
	err   error
	sends int
	last  struct {
		recipients []string
		subject    string
		body       string
	}
}

func (f *fakeNotifier) Send(_ context.Context, recipients []string, subject, body string) error {
	f.sends++
	f.last.recipients = recipients
	f.last.subject = subject
	f.last.body = body
	return f.err
}

func TestTriggerHandoverSuccess(t *testing.T) {
	store := &fakeLeadStore{
		dealership: &models.Dealership{
			ID:                 "dealership:main",
			HandoverRecipients: []string{"sales@main.example"},
		},
	}
	notifier := &fakeNotifier{}
	c := NewController(store, notifier, metrics.NewCollector(), nil, []string{"fallback@hq.example"})

	result := c.TriggerHandover(context.Background(), models.HandoverRequest{
		LeadID:       "lead:1",
		DealershipID: "dealership:main",
		Reason:       "test drive scheduling",
		CustomerName: "Sam",
	})

	require.True(t, result.Success)
	assert.NotEmpty(t, result.HandoverID)
	assert.True(t, result.NotificationSent)
	assert.Equal(t, []string{"sales@main.example"}, result.Recipients, "dealership list beats the global default")
	assert.Equal(t, []string{
		"lead:1:" + models.LeadStatusHandoverInitiated,
		"lead:1:" + models.LeadStatusHandoverCompleted,
	}, store.statusUpdates)
	assert.Contains(t, notifier.last.body, result.HandoverID)
}

func TestTriggerHandoverFallsBackToDefaultRecipients(t *testing.T) {
	store := &fakeLeadStore{dealership: &models.Dealership{ID: "dealership:main"}}
	notifier := &fakeNotifier{}
	c := NewController(store, notifier, nil, nil, []string{"fallback@hq.example"})

	result := c.TriggerHandover(context.Background(), models.HandoverRequest{
		DealershipID: "dealership:main",
		Reason:       "financing application",
	})

	require.True(t, result.Success)
	assert.Equal(t, []string{"fallback@hq.example"}, result.Recipients)
}

func TestTriggerHandoverNoRecipients(t *testing.T) {
	store := &fakeLeadStore{dealership: &models.Dealership{ID: "dealership:main"}}
	notifier := &fakeNotifier{}
	c := NewController(store, notifier, metrics.NewCollector(), nil, nil)

	result := c.TriggerHandover(context.Background(), models.HandoverRequest{
		LeadID:       "lead:1",
		DealershipID: "dealership:main",
		Reason:       "pricing negotiation",
	})

	require.False(t, result.Success)
	assert.NotEmpty(t, result.HandoverID, "failure results still carry the handover id")
	assert.False(t, result.NotificationSent)
	assert.Equal(t, 0, notifier.sends)
	assert.Contains(t, store.statusUpdates, "lead:1:"+models.LeadStatusHandoverFailed)
}

func TestTriggerHandoverNotificationFailure(t *testing.T) {
	store := &fakeLeadStore{}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	c := NewController(store, notifier, nil, nil, []string{"fallback@hq.example"})

	result := c.TriggerHandover(context.Background(), models.HandoverRequest{
		LeadID: "lead:2",
		Reason: "customer requested a human",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "send notification")
	assert.Contains(t, store.statusUpdates, "lead:2:"+models.LeadStatusHandoverFailed)
}

func TestTriggerHandoverSecondaryChannelBestEffort(t *testing.T) {
	store := &fakeLeadStore{}
	primary := &fakeNotifier{}
	secondary := &fakeNotifier{err: errors.New("sms gateway down")}
	c := NewController(store, primary, nil, nil, []string{"fallback@hq.example"}).
		WithSecondaryChannel(secondary)

	result := c.TriggerHandover(context.Background(), models.HandoverRequest{Reason: "trade-in appraisal"})

	assert.True(t, result.Success, "secondary channel failures never fail the handover")
	assert.Equal(t, 1, secondary.sends)
}

func TestReconcileStuck(t *testing.T) {
	store := &fakeLeadStore{
		stuck: []models.Lead{
			{ID: "lead:1", DealershipID: "dealership:main", Status: models.LeadStatusHandoverInitiated},
			{ID: "lead:2", DealershipID: "dealership:main", Status: models.LeadStatusHandoverInitiated},
		},
	}
	notifier := &fakeNotifier{}
	c := NewController(store, notifier, metrics.NewCollector(), nil, []string{"fallback@hq.example"})

	report, err := c.ReconcileStuck(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Scanned: 2, Completed: 2}, report)
	assert.Equal(t, 2, notifier.sends)

	// Completed leads drop out of the stuck query, so a second sweep is a
	// no-op and re-sends nothing.
	store.stuck = nil
	report, err = c.ReconcileStuck(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, report)
	assert.Equal(t, 2, notifier.sends)
}

func TestReconcileStuckIsolatesFailures(t *testing.T) {
	store := &fakeLeadStore{
		stuck: []models.Lead{
			{ID: "lead:1", Status: models.LeadStatusHandoverInitiated},
			{ID: "lead:2", Status: models.LeadStatusHandoverInitiated},
		},
	}
	notifier := &fakeNotifier{err: errors.New("down")}
	c := NewController(store, notifier, nil, nil, []string{"fallback@hq.example"})

	report, err := c.ReconcileStuck(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Scanned: 2, Failed: 2}, report)
}

func TestShouldHandover(t *testing.T) {
	tests := []struct {
		name    string
		content string
		intents []string
		want    bool
		reason  string
	}{
		{"intent beats keywords", "anything at all", []string{IntentTestDrive}, true, "test drive scheduling"},
		{"human request intent", "", []string{IntentHumanRequest}, true, "customer requested a human"},
		{"rule order on multiple intents", "", []string{IntentPricingNegotiation, IntentHumanRequest}, true, "customer requested a human"},
		{"keyword match", "can I get your best price on the crv", nil, true, "pricing negotiation"},
		{"trade-in keyword", "what's my car worth these days", nil, true, "trade-in appraisal"},
		{"no match", "do you have any blue sedans", nil, false, ""},
		{"unknown intent ignored", "hello", []string{"greeting"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldHandover(tt.content, tt.intents)
			if got.ShouldHandover != tt.want {
				t.Errorf("ShouldHandover() = %v, want %v", got.ShouldHandover, tt.want)
			}
			if got.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}
