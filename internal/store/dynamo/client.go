package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	connectAttempts = 5
	initialBackoff  = 1 * time.Second
	maxBackoff      = 30 * time.Second
)

// Client holds the DynamoDB handle used by the warranty repositories.
type Client struct {
	DB  *dynamodb.Client
	log *slog.Logger
}

// Config holds DynamoDB configuration.
type Config struct {
	Region   string
	Endpoint string // DynamoDB Local, e.g. "http://localhost:8000"

	// Only used together with Endpoint; deployed instances use IAM roles.
	AccessKeyID     string
	SecretAccessKey string
}

// localCredentials returns static keys for a local endpoint so the SDK never
// reaches for instance metadata, or nil to use the default chain.
func (cfg Config) localCredentials() aws.CredentialsProvider {
	if cfg.Endpoint == "" {
		return nil
	}
	accessKey, secretKey := cfg.AccessKeyID, cfg.SecretAccessKey
	if accessKey == "" {
		accessKey = "local"
	}
	if secretKey == "" {
		secretKey = "local"
	}
	return credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
}

// NewClient connects to DynamoDB and waits until the endpoint answers. The
// warranty tables may not exist yet; EnsureTables creates them.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if creds := cfg.localCredentials(); creds != nil {
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	c := &Client{
		DB: dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		}),
		log: log,
	}
	if err := c.waitReachable(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) waitReachable(ctx context.Context) error {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := c.DB.ListTables(callCtx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
		cancel()
		if err == nil {
			return nil
		}
		if attempt == connectAttempts {
			return fmt.Errorf("dynamodb unreachable after %d attempts: %w", connectAttempts, err)
		}

		c.log.Warn("dynamodb not reachable, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// EnsureTables creates the warranty tables that are missing.
func (c *Client) EnsureTables(ctx context.Context) error {
	return EnsureTables(ctx, c.DB, c.log)
}

// Ping reports ready only when every warranty table is ACTIVE, so /readyz
// fails while a table is still being created or was dropped.
func (c *Client) Ping(ctx context.Context) error {
	for _, spec := range tableSpecs {
		out, err := c.DB.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.name)})
		if err != nil {
			return fmt.Errorf("describe %s: %w", spec.name, err)
		}
		if err := tableActive(spec.name, out.Table); err != nil {
			return err
		}
	}
	return nil
}

func tableActive(name string, t *types.TableDescription) error {
	if t == nil {
		return fmt.Errorf("table %s: no description", name)
	}
	if t.TableStatus != types.TableStatusActive {
		return fmt.Errorf("table %s is %s", name, t.TableStatus)
	}
	return nil
}
