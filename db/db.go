package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"neurovisa/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDBName = "neurovisa"

var (
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicate     = errors.New("duplicate document")
	ErrNotInProgress = errors.New("session is not in progress")
)

// GetCollection returns a collection by name
func GetCollection(collectionName string) *mongo.Collection {
	return MongoDatabase.Collection(collectionName)
}

// extractDBName parses the database name from the URI, defaulting to "neurovisa"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDBName
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return defaultDBName
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	logger.Log.WithField("database", dbName).Info("Connected to MongoDB")

	MongoDatabase = client.Database(dbName)
	return nil
}

// DisconnectMongoDB closes the shared client
func DisconnectMongoDB(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = database.Collection(sessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}}},
		{Keys: bson.D{{Key: "questions.id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create sessions indexes: %w", err)
	}
	return nil
}
