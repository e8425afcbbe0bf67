package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects to MongoDB and verifies the connection with a ping.
func NewMongoDb(host, port, user, password, name string) (*mongo.Client, error) {
	u := &url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%s", host, port), Path: "/" + name}
	if user != "" {
		u.User = url.UserPassword(user, password)
		u.RawQuery = "authSource=admin"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(u.String()).SetConnectTimeout(10 * time.Second))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
