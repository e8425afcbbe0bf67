package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const videoCollection = "video_items"

// VideoStoreMongo keeps one document per video with _id = video id
type VideoStoreMongo struct {
	coll *mongo.Collection
}

func NewVideoStoreMongo(client *mongo.Client, dbName string) *VideoStoreMongo {
	return &VideoStoreMongo{coll: client.Database(dbName).Collection(videoCollection)}
}

// EnsureVideoStoreIndexesMongo creates the ordering index used by ListAll
func EnsureVideoStoreIndexesMongo(ctx context.Context, client *mongo.Client, dbName string) error {
	_, err := client.Database(dbName).Collection(videoCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create video_items index (mongo): %w", err)
	}
	return nil
}

func (r *VideoStoreMongo) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	var v model.VideoItem
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not in store", id))
		}
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeStorage, "get video")
	}
	return v, nil
}

// Put upserts; immutable fields are only written on insert
func (r *VideoStoreMongo) Put(ctx context.Context, item model.VideoItem) error {
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: item.Title},
			{Key: "description", Value: item.Description},
			{Key: "likes", Value: item.Likes},
			{Key: "views", Value: item.Views},
			{Key: "updated_at", Value: time.Now().UTC()},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "author", Value: item.Author},
			{Key: "video_url", Value: item.VideoURL},
			{Key: "thumbnail_url", Value: item.ThumbnailURL},
			{Key: "created_at", Value: item.CreatedAt},
		}},
	}
	_, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: item.ID}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorage, "put video")
	}
	return nil
}

func (r *VideoStoreMongo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, apperror.Wrap(err, apperror.CodeStorage, "delete video")
	}
	return res.DeletedCount > 0, nil
}

func (r *VideoStoreMongo) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorage, "list videos")
	}
	out := make([]model.VideoItem, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorage, "decode videos")
	}
	return out, nil
}
