package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

const auditCollection = "session_audit"

// auditIndexModels declares the indexes the trail is queried by: per-operator
// history, and time-ordered scans for retention pruning.
func auditIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
}

func ensureAuditIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(auditCollection).Indexes().CreateMany(ctx, auditIndexModels()); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

// MongoAuditRepository persists the session audit trail: logins, logouts,
// denials, and forced invalidations.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Actor     string `bson:"actor,omitempty"`
	Action    string `bson:"action"`
	Detail    string `bson:"detail,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func newAuditDoc(event domain.AuditEvent) auditDoc {
	return auditDoc{
		Actor:     event.Actor,
		Action:    string(event.Action),
		Detail:    event.Detail,
		Timestamp: event.Timestamp.Unix(),
	}
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	if _, err := r.coll.InsertOne(ctx, newAuditDoc(event)); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
