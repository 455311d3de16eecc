package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/haulbase/haulbase/internal/models"
)

// LorryStore defines the interface over the legacy lorry table.
type LorryStore interface {
	ScanLorries(ctx context.Context) ([]models.Lorry, error)
	MarkMigrated(ctx context.Context, lorryID string, at time.Time) error
}

// LorryTable implements LorryStore against DynamoDB.
type LorryTable struct {
	Client API
	Table  string
}

// ScanLorries walks every legacy record by its key prefix, following
// pagination until the table is exhausted.
func (t *LorryTable) ScanLorries(ctx context.Context) ([]models.Lorry, error) {
	lorries := []models.Lorry{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := t.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(t.Table),
			FilterExpression: aws.String("begins_with(PK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: "LORRY#"},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning lorries: %w", err)
		}
		var page []models.Lorry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling lorries: %w", err)
		}
		lorries = append(lorries, page...)
		if out.LastEvaluatedKey == nil {
			return lorries, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// MarkMigrated stamps a legacy record as projected. The record itself is
// never deleted.
func (t *LorryTable) MarkMigrated(ctx context.Context, lorryID string, at time.Time) error {
	pk, sk := models.LorryKey(lorryID)
	_, err := t.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(t.Table),
		Key:              itemKey(pk, sk),
		UpdateExpression: aws.String("SET migrated = :true, migrated_at = :at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":at":   &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("marking lorry %s migrated: %w", lorryID, err)
	}
	return nil
}
