package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/domain"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, n *entity.Notification) error
	CreateMany(ctx context.Context, ns []*entity.Notification) error
	FindByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountByUser(ctx context.Context, userID string, unreadOnly bool) (int64, error)
	// MarkRead and Delete only touch documents owned by userID.
	MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type notificationRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewNotificationRepository(db *mongo.Database, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		coll: db.Collection("notifications"),
		log:  log.With(zap.String("repository", "notification")),
	}
}

func (r *notificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_read", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("user_id", n.UserID),
			zap.String("type", string(n.Type)),
		)
		return fmt.Errorf("create notification for %s: %w", n.UserID, err)
	}
	return nil
}

func (r *notificationRepository) CreateMany(ctx context.Context, ns []*entity.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]any, len(ns))
	for i, n := range ns {
		docs[i] = n
	}
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		r.log.Error("Failed to create notifications", zap.Error(err), zap.Int("count", len(ns)))
		return fmt.Errorf("create %d notifications: %w", len(ns), err)
	}
	return nil
}

func userFilter(userID string, unreadOnly bool) bson.M {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	return filter
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, userFilter(userID, unreadOnly), opts)
	if err != nil {
		r.log.Error("Failed to find notifications", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("find notifications for %s: %w", userID, err)
	}

	notifications := []*entity.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountByUser(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, userFilter(userID, unreadOnly))
	if err != nil {
		r.log.Error("Failed to count notifications", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("count notifications for %s: %w", userID, err)
	}
	return n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrapf(domain.ErrNotificationNotFound, "mark read %s", id)
	}
	if err != nil {
		r.log.Error("Failed to mark notification read", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now()}},
	)
	if err != nil {
		r.log.Error("Failed to mark all notifications read", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("mark all read for %s: %w", userID, err)
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		r.log.Error("Failed to delete notification", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(domain.ErrNotificationNotFound, "delete %s", id)
	}
	return nil
}
