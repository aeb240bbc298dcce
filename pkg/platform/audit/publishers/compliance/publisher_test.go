package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "accredis/pkg/domain"
	audit "accredis/pkg/platform/audit"
	"accredis/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingStore) ListByClinic(context.Context, id.ClinicID, int) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_Emit(t *testing.T) {
	t.Run("persists event with derived category and timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := New(store)
		clinicID := id.NewClinicID()

		err := pub.Emit(context.Background(), audit.Event{
			ActorID:  id.NewUserID(),
			ClinicID: clinicID,
			Action:   string(audit.EventDocumentPublished),
		})
		require.NoError(t, err)

		events, err := store.ListByClinic(context.Background(), clinicID, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
	})

	t.Run("rejects events without actor", func(t *testing.T) {
		pub := New(memory.NewInMemoryStore())
		err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventRiskCreated)})
		require.Error(t, err)
	})

	t.Run("fails closed when the store fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		pub := New(failingStore{}, WithMetrics(m))

		err := pub.Emit(context.Background(), audit.Event{
			ActorID: id.NewUserID(),
			Action:  string(audit.EventRiskCreated),
		})
		require.Error(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.persistFailures))
	})
}

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, audit.CategorySecurity, audit.EventAccessDenied.Category())
	assert.Equal(t, audit.CategoryOperations, audit.EventRiskUpdated.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}
