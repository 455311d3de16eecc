package db

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

// AssetStore defines the interface for truck/trailer database operations.
type AssetStore interface {
	GetAsset(ctx context.Context, id string, kind models.AssetKind) (*models.Asset, error)
	PutAsset(ctx context.Context, asset models.Asset) error
	FindAssetByVIN(ctx context.Context, carrierID, vin string, kind models.AssetKind) (*models.Asset, error)
	FindAssetByPlate(ctx context.Context, carrierID, plate string, kind models.AssetKind) (*models.Asset, error)
	ListAssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error)
	ListAssetsByCarrier(ctx context.Context, carrierID string) ([]models.Asset, error)
	ListAllAssets(ctx context.Context) ([]models.Asset, error)
	BatchGetAssets(ctx context.Context, ids []string, kind models.AssetKind) ([]models.Asset, error)
}

// AssetTable implements AssetStore against DynamoDB.
type AssetTable struct {
	Client API
	Table  string
}

// GetAsset finds an asset by id and kind.
func (t *AssetTable) GetAsset(ctx context.Context, id string, kind models.AssetKind) (*models.Asset, error) {
	pk, sk := models.AssetKey(id, kind)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting asset %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("asset %s not found", id)
	}
	var asset models.Asset
	if err := attributevalue.UnmarshalMap(out.Item, &asset); err != nil {
		return nil, fmt.Errorf("unmarshaling asset %s: %w", id, err)
	}
	return &asset, nil
}

// PutAsset writes an asset record, deriving its key attributes.
func (t *AssetTable) PutAsset(ctx context.Context, asset models.Asset) error {
	asset.PK, asset.SK = models.AssetKey(asset.ID, asset.Kind)
	item, err := attributevalue.MarshalMap(asset)
	if err != nil {
		return fmt.Errorf("marshaling asset %s: %w", asset.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting asset %s: %w", asset.ID, err)
	}
	return nil
}

// FindAssetByVIN probes the VIN index within a carrier's scope. This is a
// uniqueness probe: NotFound means the value is free.
func (t *AssetTable) FindAssetByVIN(ctx context.Context, carrierID, vin string, kind models.AssetKind) (*models.Asset, error) {
	return t.probeIndex(ctx, IndexVIN, "vin", vin, carrierID, kind)
}

// FindAssetByPlate probes the license-plate index within a carrier's scope.
func (t *AssetTable) FindAssetByPlate(ctx context.Context, carrierID, plate string, kind models.AssetKind) (*models.Asset, error) {
	return t.probeIndex(ctx, IndexPlate, "plate", plate, carrierID, kind)
}

func (t *AssetTable) probeIndex(ctx context.Context, index, attr, value, carrierID string, kind models.AssetKind) (*models.Asset, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("carrier_id = :c AND %s = :v", attr)),
		FilterExpression:       aws.String("kind = :k"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: carrierID},
			":v": &types.AttributeValueMemberS{Value: value},
			":k": &types.AttributeValueMemberS{Value: string(kind)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("probing %s index: %w", attr, err)
	}
	if len(out.Items) == 0 {
		return nil, apperr.NotFound("no asset with %s %s", attr, value)
	}
	var asset models.Asset
	if err := attributevalue.UnmarshalMap(out.Items[0], &asset); err != nil {
		return nil, fmt.Errorf("unmarshaling asset from %s index: %w", attr, err)
	}
	return &asset, nil
}

// ListAssetsByOwner returns every asset of a truck owner. An owner with
// no assets gets an empty list, not an error.
func (t *AssetTable) ListAssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	return t.listByIndex(ctx, IndexOwner, "owner_id", ownerID)
}

// ListAssetsByCarrier returns every asset registered under a carrier.
func (t *AssetTable) ListAssetsByCarrier(ctx context.Context, carrierID string) ([]models.Asset, error) {
	return t.listByIndex(ctx, IndexCarrier, "carrier_id", carrierID)
}

func (t *AssetTable) listByIndex(ctx context.Context, index, attr, value string) ([]models.Asset, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(attr + " = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying assets by %s: %w", attr, err)
	}
	assets := []models.Asset{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &assets); err != nil {
		return nil, fmt.Errorf("unmarshaling assets: %w", err)
	}
	return assets, nil
}

// ListAllAssets scans the whole table. Admin listing only.
func (t *AssetTable) ListAllAssets(ctx context.Context) ([]models.Asset, error) {
	assets := []models.Asset{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := t.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(t.Table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning assets: %w", err)
		}
		var page []models.Asset
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling assets: %w", err)
		}
		assets = append(assets, page...)
		if out.LastEvaluatedKey == nil {
			return assets, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// BatchGetAssets fetches the assets of one kind among the given ids.
func (t *AssetTable) BatchGetAssets(ctx context.Context, ids []string, kind models.AssetKind) ([]models.Asset, error) {
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		pk, sk := models.AssetKey(id, kind)
		keys = append(keys, itemKey(pk, sk))
	}
	items, err := batchGet(ctx, t.Client, t.Table, keys)
	if err != nil {
		return nil, fmt.Errorf("batch getting assets: %w", err)
	}
	assets := []models.Asset{}
	if err := attributevalue.UnmarshalListOfMaps(items, &assets); err != nil {
		return nil, fmt.Errorf("unmarshaling assets: %w", err)
	}
	return assets, nil
}
