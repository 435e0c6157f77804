// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/config"
)

// ConnectorFactory creates warehouse connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSnowflakeConnector creates a new Snowflake connector
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	f.logger.Info("Creating Snowflake connector")

	connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.cfg.ChunkSize, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.cfg.ChunkSize, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}

// CreateTargetConnector creates the connector selected by the publish
// target. It returns nil without error when publishing is disabled.
func (f *ConnectorFactory) CreateTargetConnector(ctx context.Context) (DatabaseConnector, error) {
	switch f.cfg.PublishTarget {
	case config.PublishTargetPostgres:
		pgConn, err := f.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, err
		}
		return pgConn, nil
	case config.PublishTargetSnowflake:
		snowConn, err := f.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, err
		}
		return snowConn, nil
	case config.PublishTargetNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown publish target %q", f.cfg.PublishTarget)
	}
}
