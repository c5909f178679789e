package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tasktracker/task-api/internal/core/domain"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), now: time.Now}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (t mongoTask) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          t.ID.Hex(),
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    domain.TaskPriority(t.Priority),
		Status:      domain.TaskStatus(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}

// ownedFilter matches a task only under its owner. ok is false when taskID
// is not a valid ObjectID.
func ownedFilter(ownerID, taskID string) (bson.M, bool) {
	oid, ok := parseID(taskID)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": ownerID}, true
}

// Create inserts a new task document and returns it with its assigned id.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoTask
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.toDomain()
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus sets status and updated_at only, returning the new document.
func (r *TaskRepository) UpdateStatus(ctx context.Context, ownerID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": r.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTask
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by every task query.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("tasks indexes: %w", err)
	}
	return nil
}
