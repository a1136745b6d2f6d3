package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"labscrub/internal/models"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Infof("Connected to MongoDB at %s", uri)

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// PortalFlagUpdates maps a report onto one update per course that has lab
// instructions: flagged courses get true, the cleanup worklist gets false.
func PortalFlagUpdates(report models.Report) []models.FlagUpdate {
	flagged := map[string]bool{}
	for _, id := range report.Flagged {
		flagged[id] = true
	}

	updates := make([]models.FlagUpdate, 0, len(report.WithInstructions))
	for _, id := range report.WithInstructions {
		updates = append(updates, models.FlagUpdate{CourseID: id, RequiresPortal: flagged[id]})
	}
	return updates
}

// SyncResult counts what SyncPortalFlags did.
type SyncResult struct {
	Matched  int
	Modified int
	Missing  []string
}

// SyncPortalFlags sets requiresAzurePortal on each lab document matched by
// its id. Documents are never created; unknown ids are reported as missing.
func (m *MongoDB) SyncPortalFlags(collectionName string, updates []models.FlagUpdate) (SyncResult, error) {
	collection := m.Database.Collection(collectionName)
	var result SyncResult

	for _, u := range updates {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		res, err := collection.UpdateOne(ctx,
			bson.M{"id": u.CourseID},
			bson.M{"$set": bson.M{"requiresAzurePortal": u.RequiresPortal}},
		)
		cancel()
		if err != nil {
			return result, fmt.Errorf("failed to update lab %s: %w", u.CourseID, err)
		}

		if res.MatchedCount == 0 {
			result.Missing = append(result.Missing, u.CourseID)
			continue
		}
		result.Matched += int(res.MatchedCount)
		result.Modified += int(res.ModifiedCount)
	}

	return result, nil
}

// BackupCollection writes every document of the collection to w as one
// relaxed extended JSON document per line.
func (m *MongoDB) BackupCollection(collectionName string, w io.Writer) (int, error) {
	collection := m.Database.Collection(collectionName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to query collection: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return count, fmt.Errorf("failed to decode document: %w", err)
		}

		jsonBytes, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return count, fmt.Errorf("failed to marshal document to JSON: %w", err)
		}
		if !json.Valid(jsonBytes) {
			return count, fmt.Errorf("document %d produced invalid JSON", count+1)
		}
		if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
			return count, fmt.Errorf("failed to write document: %w", err)
		}
		count++
	}

	if err := cursor.Err(); err != nil {
		return count, fmt.Errorf("cursor error: %w", err)
	}

	return count, nil
}
