package results

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/JaimeStill/glimpse/internal/fingerprint"
)

const lookupQuery = "SELECT * FROM c WHERE c.id = @id"

type cosmos struct {
	container *azcosmos.ContainerClient
	logger    *slog.Logger
}

// NewCosmos creates a Store over an Azure Cosmos DB container partitioned by id.
// No request is issued until the first Lookup or Insert.
func NewCosmos(cfg *CosmosConfig, logger *slog.Logger) (Store, error) {
	client, err := newCosmosClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create cosmos client: %w", err)
	}

	container, err := client.NewContainer(cfg.Database, cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("create cosmos container client: %w", err)
	}

	return &cosmos{
		container: container,
		logger:    logger.With("system", "results", "backend", BackendCosmos),
	}, nil
}

func newCosmosClient(cfg *CosmosConfig) (*azcosmos.Client, error) {
	endpoint := cfg.EndpointURL()

	if cfg.Key != "" {
		cred, err := azcosmos.NewKeyCredential(cfg.Key)
		if err != nil {
			return nil, err
		}
		return azcosmos.NewClientWithKey(endpoint, cred, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azcosmos.NewClient(endpoint, cred, nil)
}

func (c *cosmos) Lookup(ctx context.Context, key fingerprint.Fingerprint) (string, bool, error) {
	opts := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@id", Value: string(key)},
		},
	}

	pager := c.container.NewQueryItemsPager(lookupQuery, azcosmos.NewPartitionKeyString(string(key)), opts)

	var docs [][]byte
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", false, unavailable("lookup "+string(key), err)
		}
		docs = append(docs, page.Items...)
	}

	return Match(key, docs)
}

func (c *cosmos) Insert(ctx context.Context, key fingerprint.Fingerprint, value string) error {
	data, err := marshalEntry(key, value)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if _, err := c.container.UpsertItem(ctx, azcosmos.NewPartitionKeyString(string(key)), data, nil); err != nil {
		return unavailable("insert "+string(key), err)
	}

	c.logger.Debug("entry upserted", "id", key)
	return nil
}
