package connection

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"cradi/config"
	"cradi/notify"
	"cradi/objectstore"
	"cradi/repository"
)

// Clients holds every external integration built from one Config.
type Clients struct {
	Store      repository.Store
	Pusher     notify.Pusher
	SMS        notify.SMSSender
	SMSEnabled bool
	Images     objectstore.URLSigner
	Redis      *redis.Client
}

// Open connects to every configured backend. On error, anything already
// opened is closed.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (clients *Clients, err error) {
	clients = &Clients{}
	defer func() {
		if err != nil {
			clients.Close()
			clients = nil
		}
	}()

	var app *firebase.App
	if cfg.NeedsFirebase() {
		if app, err = FirebaseApp(ctx, cfg.Firebase); err != nil {
			return clients, err
		}
		log.Info("Firebase app initialized")
	}

	if clients.Store, err = openStore(ctx, cfg, app, log); err != nil {
		return clients, err
	}

	if clients.Pusher, err = openPusher(ctx, cfg, app, clients.Store, log); err != nil {
		return clients, err
	}

	clients.SMS = notify.NewSMSSender(cfg.SMS, log)
	clients.SMSEnabled = cfg.SMS.Enabled()

	if clients.Images, err = openImages(ctx, cfg, app); err != nil {
		return clients, err
	}

	if clients.Redis, err = RedisConnection(ctx, cfg.Redis); err != nil {
		return clients, err
	}
	if clients.Redis == nil {
		log.Warn("REDIS_ADDR is not set, scheduled jobs run without a cross-replica lock")
	}

	return clients, nil
}

func openStore(ctx context.Context, cfg *config.Config, app *firebase.App, log *logrus.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreFirestore:
		client, err := FBConnection(ctx, app)
		if err != nil {
			return nil, err
		}
		log.Info("Using Firestore document store")
		return repository.NewFirestoreStore(client, cfg.Collections), nil
	case config.StoreMySQL, config.StorePostgres:
		db, err := DBConnection(cfg.Store, log)
		if err != nil {
			return nil, err
		}
		log.WithField("driver", cfg.Store.Driver).Info("Using SQL store")
		return repository.NewGormStore(db), nil
	case config.StoreMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPusher(ctx context.Context, cfg *config.Config, app *firebase.App, tokens notify.TokenSource, log *logrus.Logger) (notify.Pusher, error) {
	if cfg.Push.Provider == config.PushLog {
		log.Warn("PUSH_PROVIDER is log, push notifications are only logged")
		return notify.NewLogPusher(log), nil
	}
	client, err := MessagingConnection(ctx, app)
	if err != nil {
		return nil, err
	}
	return notify.NewFCMPusher(client, tokens, log), nil
}

func openImages(ctx context.Context, cfg *config.Config, app *firebase.App) (objectstore.URLSigner, error) {
	oc := cfg.ObjectStore
	switch oc.Provider {
	case config.ObjectStoreS3:
		return objectstore.NewS3Signer(oc.S3Endpoint, oc.S3Region, oc.S3AccessKeyID, oc.S3SecretAccessKey, oc.S3Bucket, oc.URLTTL), nil
	case config.ObjectStoreGCS:
		client, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting storage client: %w", err)
		}
		bucket, err := client.Bucket(oc.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("error opening bucket %s: %w", oc.GCSBucket, err)
		}
		return objectstore.NewGCSSigner(bucket, oc.URLTTL), nil
	default:
		return nil, nil
	}
}

func (c *Clients) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
