package mgo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketchat/tools/errs"
)

// Config represents the MongoDB configuration.
type Config struct {
	URI         string
	Database    string
	Username    string
	Password    string
	AuthSource  string
	MaxPoolSize int
	MaxRetry    int
}

func (c *Config) norm() {
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = 20
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
	if c.AuthSource == "" {
		c.AuthSource = "admin"
	}
}

func (c *Config) clientOptions() (*options.ClientOptions, error) {
	if c.URI == "" {
		return nil, errs.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(c.URI)
	opts.SetMaxPoolSize(uint64(c.MaxPoolSize))
	if c.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   c.Username,
			Password:   c.Password,
			AuthSource: c.AuthSource,
		})
	}
	return opts, nil
}

// Connect dials MongoDB with retry and returns the database handle.
func Connect(ctx context.Context, cfg *Config) (*mongo.Database, error) {
	cfg.norm()
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}

	var cli *mongo.Client
	for i := 0; i < cfg.MaxRetry; i++ {
		cli, err = connect(ctx, opts)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second / 2):
		}
	}
	if err != nil {
		return nil, errs.Wrapf(err, "failed to connect to MongoDB uri=%s", cfg.URI)
	}
	return cli.Database(cfg.Database), nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cli, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(cctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}
	return cli, nil
}
