package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

func TestAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert success", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Insert(context.Background(), &domain.AuditEntry{
			ID:        "a1",
			UserID:    "u1",
			Action:    domain.AuditRegister,
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	})

	mt.Run("insert failure is wrapped", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))

		err := repo.Insert(context.Background(), &domain.AuditEntry{ID: "a2", UserID: "u1", Action: domain.AuditRegister})
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefaultTimeout_BoundsRepositoryCalls(t *testing.T) {
	if defaultTimeout <= 0 || defaultTimeout > defaultConnectTimeout {
		t.Fatalf("defaultTimeout = %v, want a positive value no larger than %v", defaultTimeout, defaultConnectTimeout)
	}
}
