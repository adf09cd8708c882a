package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

const auditCollection = "session_audit"

// AuditRepository persists session lifecycle events to MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp int64              `bson:"timestamp"`
	Action    string             `bson:"action"`
	SessionID string             `bson:"session_id"`
	Username  string             `bson:"username,omitempty"`
	Role      string             `bson:"role,omitempty"`
	Success   bool               `bson:"success"`
	Error     string             `bson:"error,omitempty"`
}

func (r *AuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	doc := auditDoc{
		Timestamp: event.Timestamp.Unix(),
		Action:    string(event.Action),
		SessionID: event.SessionID,
		Username:  event.Username,
		Role:      event.Role.String(),
		Success:   event.Success,
		Error:     event.Error,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
