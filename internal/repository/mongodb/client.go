package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
)

const (
	stocksCollection     = "stock_records"
	categoriesCollection = "categories"
	usersCollection      = "users"
)

// Client owns the MongoDB connection pool shared by the repositories.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.MongoDBConfig
	logger *zap.Logger
}

// NewClient connects, pings, and optionally creates the indexes the repositories rely on.
func NewClient(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetRetryReads(true).
		SetRetryWrites(cfg.RetryWrites).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// Ping the database to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c := &Client{
		client: client,
		db:     client.Database(cfg.DBName),
		cfg:    cfg,
		logger: logger,
	}

	if cfg.EnsureIndexes {
		if err := c.ensureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	logger.Info("mongodb connected", zap.String("database", cfg.DBName))
	return c, nil
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	stockIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "location_tag", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
	}
	if _, err := c.db.Collection(stocksCollection).Indexes().CreateMany(ctx, stockIndexes); err != nil {
		return fmt.Errorf("create stock indexes: %w", err)
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.db.Collection(usersCollection).Indexes().CreateOne(ctx, userIndex); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	return nil
}

// Ping reports whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Stocks returns the stock record repository.
func (c *Client) Stocks() *StockRepository {
	return &StockRepository{coll: c.db.Collection(stocksCollection), timeout: c.cfg.Timeout, logger: c.logger.Named("stocks")}
}

// Categories returns the category repository.
func (c *Client) Categories() *CategoryRepository {
	return &CategoryRepository{coll: c.db.Collection(categoriesCollection), timeout: c.cfg.Timeout}
}

// Users returns the user repository.
func (c *Client) Users() *UserRepository {
	return &UserRepository{coll: c.db.Collection(usersCollection), timeout: c.cfg.Timeout}
}
