package datasync

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/sql/armsql"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// AzureClient implements Client over the ARM SQL API.
type AzureClient struct {
	groups *armsql.SyncGroupsClient
}

// NewAzureClient builds a client authenticated with the default Azure
// credential chain (environment, managed identity, CLI).
func NewAzureClient(subscriptionID string) (*AzureClient, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Annotate(err, "failed to build Azure credential")
	}
	return NewAzureClientWithCredential(subscriptionID, cred, nil)
}

// NewAzureClientWithCredential builds a client with an explicit credential.
func NewAzureClientWithCredential(subscriptionID string, cred azcore.TokenCredential, options *arm.ClientOptions) (*AzureClient, error) {
	groups, err := armsql.NewSyncGroupsClient(subscriptionID, cred, options)
	if err != nil {
		return nil, errors.Annotate(err, "failed to create sync groups client")
	}
	return &AzureClient{groups: groups}, nil
}

func (c *AzureClient) GetSyncGroup(ctx context.Context, target Target) (*SyncGroupInfo, error) {
	resp, err := c.groups.Get(ctx, target.ResourceGroup, target.Server, target.Database, target.SyncGroup, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to get sync group %s", target.SyncGroup)
	}
	return syncGroupInfoFromARM(resp.SyncGroup), nil
}

func (c *AzureClient) SetSyncInterval(ctx context.Context, target Target, seconds int32) error {
	log.Info("updating sync interval",
		zap.String("syncGroup", target.SyncGroup),
		zap.Int32("intervalSeconds", seconds))
	poller, err := c.groups.BeginUpdate(ctx, target.ResourceGroup, target.Server, target.Database, target.SyncGroup,
		armsql.SyncGroup{
			Properties: &armsql.SyncGroupProperties{
				Interval: to.Ptr(seconds),
			},
		}, nil)
	if err != nil {
		return errors.Annotatef(err, "failed to update interval of sync group %s", target.SyncGroup)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return errors.Annotatef(err, "interval update of sync group %s did not complete", target.SyncGroup)
	}
	return nil
}

func (c *AzureClient) TriggerSchemaRefresh(ctx context.Context, target Target) error {
	// The refresh is a long-running operation on the service side. We only
	// need it started; completion is observed through GetRefreshedSchema's
	// LastUpdateTime, so the poller is dropped here.
	_, err := c.groups.BeginRefreshHubSchema(ctx, target.ResourceGroup, target.Server, target.Database, target.SyncGroup, nil)
	if err != nil {
		return errors.Annotatef(err, "failed to trigger schema refresh of sync group %s", target.SyncGroup)
	}
	return nil
}

func (c *AzureClient) GetRefreshedSchema(ctx context.Context, target Target) (*RefreshedSchema, error) {
	var full []*armsql.SyncFullSchemaProperties
	pager := c.groups.NewListHubSchemasPager(target.ResourceGroup, target.Server, target.Database, target.SyncGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to list hub schema of sync group %s", target.SyncGroup)
		}
		full = append(full, page.Value...)
	}
	return refreshedSchemaFromARM(full), nil
}

func (c *AzureClient) PushSchema(ctx context.Context, target Target, s *schema.Schema) error {
	poller, err := c.groups.BeginUpdate(ctx, target.ResourceGroup, target.Server, target.Database, target.SyncGroup,
		armsql.SyncGroup{
			Properties: &armsql.SyncGroupProperties{
				Schema: schemaToARM(s),
			},
		}, nil)
	if err != nil {
		return errors.Annotatef(err, "failed to push schema to sync group %s", target.SyncGroup)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return errors.Annotatef(err, "schema push to sync group %s did not complete", target.SyncGroup)
	}
	return nil
}
