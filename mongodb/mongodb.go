package mongodb

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	serverError "github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/env"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ReadyHook runs once after the connection has been established.
type ReadyHook func(ctx context.Context) error

// MongoDBConn is the single storage handle shared by every repository. Between
// New and a successful Connect it is not ready: collection operations block in
// Wait until the connection is up or their context ends.
type MongoDBConn struct {
	Client *mongo.Client

	opts   *options.ClientOptions
	dbName string
	logger zerolog.Logger

	ready   chan struct{}
	once    sync.Once
	connErr error

	mu        sync.Mutex
	connected bool
	hooks     []ReadyHook
}

func New(config env.MongoDBConfig, logger zerolog.Logger) (*MongoDBConn, error) {

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(config.Address()).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(config.ConnectTimeout).
		SetServerSelectionTimeout(config.ConnectTimeout)

	if config.User != "" {
		opts.SetAuth(options.Credential{Username: config.User, Password: config.Password})
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &MongoDBConn{
		opts:   opts,
		dbName: config.DB,
		logger: logger.With().Str("component", "mongodb").Str("database", config.DB).Logger(),
		ready:  make(chan struct{}),
	}, nil
}

// Connect dials and pings the server, then runs the registered readiness
// hooks. Only the first call does any work; later calls return its result.
func (db *MongoDBConn) Connect(ctx context.Context) error {

	db.once.Do(func() {

		client, err := mongo.Connect(ctx, db.opts)
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
		}

		db.mu.Lock()
		db.Client = client
		db.connErr = err
		db.connected = true
		hooks := db.hooks
		db.hooks = nil
		db.mu.Unlock()

		close(db.ready)

		if err != nil {
			db.logger.Error().Err(err).Msg("connect to MongoDB failed")
			return
		}

		db.logger.Info().Msg("connected to MongoDB")

		for _, hook := range hooks {
			db.runHook(ctx, hook)
		}
	})

	return db.connErr
}

// OnReady registers hook to run once the connection is established. When the
// connection is already up the hook runs immediately; after a failed connect
// it never runs.
func (db *MongoDBConn) OnReady(ctx context.Context, hook ReadyHook) {

	db.mu.Lock()
	if !db.connected {
		db.hooks = append(db.hooks, hook)
		db.mu.Unlock()
		return
	}

	failed := db.connErr != nil
	db.mu.Unlock()

	if !failed {
		db.runHook(ctx, hook)
	}
}

func (db *MongoDBConn) runHook(ctx context.Context, hook ReadyHook) {

	if err := hook(ctx); err != nil {
		db.logger.Warn().Err(err).Msg("readiness hook failed")
	}
}

// Wait blocks until Connect has finished. It returns the connect error, or a
// StorageNotReadyError when ctx ends first.
func (db *MongoDBConn) Wait(ctx context.Context) error {

	select {
	case <-db.ready:
		return db.connErr
	default:
	}

	select {
	case <-db.ready:
		return db.connErr
	case <-ctx.Done():
		return serverError.StorageNotReadyError.New(ctx.Err())
	}
}

// IsReady reports whether a connection attempt finished successfully.
func (db *MongoDBConn) IsReady() bool {

	select {
	case <-db.ready:
		return db.connErr == nil
	default:
		return false
	}
}

func (db *MongoDBConn) Disconnect(ctx context.Context) error {

	db.mu.Lock()
	client := db.Client
	db.mu.Unlock()

	if client == nil {
		return nil
	}

	return client.Disconnect(ctx)
}

func (db *MongoDBConn) GetDatabase() *mongo.Database {
	return db.Client.Database(db.dbName)
}

// Collection returns a handle that waits for readiness before every call.
func (db *MongoDBConn) Collection(name string) storage.Collection {
	return &collection{conn: db, name: name}
}
