package dbclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"ora2mongo/internal/domain"
	"ora2mongo/internal/etl"
)

// MongoDestination implements etl.Destination for MongoDB.
type MongoDestination struct {
	client *mongo.Client
	dbName string
	log    *zap.Logger
}

// buildMongoURI returns the connection URI for conn. A Host that already is a
// mongodb:// or mongodb+srv:// URI is used as-is, with <password>
// placeholders substituted.
func buildMongoURI(conn domain.DatabaseConnection) string {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if conn.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(conn.Password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(conn.Password))
		}
		return uri
	}

	port := conn.Port
	if port == 0 {
		port = domain.DatabaseDriverMongoDB.DefaultPort()
	}
	u := &url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", conn.Host, port),
	}
	if conn.Username != "" {
		u.User = url.UserPassword(conn.Username, conn.Password)
	}
	return u.String()
}

// maskURI hides the password of a connection URI for log lines.
func maskURI(uri, password string) string {
	if password == "" {
		return uri
	}
	uri = strings.ReplaceAll(uri, url.QueryEscape(password), "***")
	uri = strings.ReplaceAll(uri, url.PathEscape(password), "***")
	return strings.ReplaceAll(uri, password, "***")
}

// OpenMongo creates a client for conn and pings the deployment, so an
// unreachable server is reported here rather than on the first insert.
func OpenMongo(ctx context.Context, conn domain.DatabaseConnection, log *zap.Logger) (*MongoDestination, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mongo")

	uri := buildMongoURI(conn)
	log.Debug("connecting",
		zap.String("uri", maskURI(uri, conn.Password)),
		zap.String("database", conn.Database),
	)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo at %s: %w", conn.Address(), err)
	}

	return &MongoDestination{client: client, dbName: conn.Database, log: log}, nil
}

// InsertMany bulk-inserts records into collection. The collection is created
// implicitly by the server on first insert.
func (m *MongoDestination) InsertMany(ctx context.Context, collection string, records []etl.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	coll := m.client.Database(m.dbName).Collection(collection)
	res, err := coll.InsertMany(ctx, toDocuments(records), options.InsertMany().SetOrdered(true))
	if err != nil {
		return acceptedBeforeError(err), fmt.Errorf("insertMany %s: %w", collection, err)
	}
	inserted := len(res.InsertedIDs)

	m.log.Debug("inserted documents",
		zap.String("collection", collection),
		zap.Int("count", inserted),
	)
	return inserted, nil
}

// acceptedBeforeError returns how many documents an ordered InsertMany wrote
// before failing. InsertedIDs lists every attempted document, so it cannot be
// used on error. Ordered inserts stop at the first write error, whose index is
// the number of documents written. Any other error counts as nothing written.
func acceptedBeforeError(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		first = min(first, we.Index)
	}
	return first
}

// Close disconnects the client.
func (m *MongoDestination) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// toDocuments turns records into BSON documents.
func toDocuments(records []etl.Record) []any {
	docs := make([]any, len(records))
	for i, rec := range records {
		doc := make(bson.M, len(rec.Data))
		for k, v := range rec.Data {
			doc[k] = v
		}
		docs[i] = doc
	}
	return docs
}
