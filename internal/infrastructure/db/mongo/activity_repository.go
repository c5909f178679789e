package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tasktracker/task-api/internal/core/domain"
)

const collectionActivity = "task_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

type mongoActivity struct {
	TaskID     string    `bson:"task_id"`
	UserID     string    `bson:"user_id"`
	Action     string    `bson:"action"`
	FromStatus string    `bson:"from_status,omitempty"`
	ToStatus   string    `bson:"to_status,omitempty"`
	At         time.Time `bson:"at"`
}

// Insert appends one entry to the task_activity audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.TaskActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, mongoActivity{
		TaskID:     a.TaskID,
		UserID:     a.UserID,
		Action:     string(a.Action),
		FromStatus: string(a.FromStatus),
		ToStatus:   string(a.ToStatus),
		At:         a.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByTask returns the owner's entries for taskID, oldest first.
func (r *ActivityRepository) ListByTask(ctx context.Context, ownerID, taskID string) ([]*domain.TaskActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"task_id": taskID, "user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoActivity
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]*domain.TaskActivity, len(docs))
	for i, d := range docs {
		out[i] = &domain.TaskActivity{
			TaskID:     d.TaskID,
			UserID:     d.UserID,
			Action:     domain.ActivityAction(d.Action),
			FromStatus: domain.TaskStatus(d.FromStatus),
			ToStatus:   domain.TaskStatus(d.ToStatus),
			At:         d.At.UTC(),
		}
	}
	return out, nil
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("activity indexes: %w", err)
	}
	return nil
}
