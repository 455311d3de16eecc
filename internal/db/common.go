package db

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// itemKey builds the composite key map for a record.
func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// batchGet fetches up to 100 keys per round, re-requesting unprocessed
// keys until the store has answered for all of them.
func batchGet(ctx context.Context, client API, table string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for len(keys) > 0 {
		batch := keys
		if len(batch) > 100 {
			batch = keys[:100]
		}
		rest := keys[len(batch):]

		out, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				table: {Keys: batch},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("batch get against %s: %w", table, err)
		}
		items = append(items, out.Responses[table]...)

		keys = rest
		if unprocessed, ok := out.UnprocessedKeys[table]; ok {
			keys = append(keys, unprocessed.Keys...)
		}
	}
	return items, nil
}
