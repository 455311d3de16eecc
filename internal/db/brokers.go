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

// BrokerStore defines the interface for broker reference-data operations.
type BrokerStore interface {
	GetBroker(ctx context.Context, id string) (*models.Broker, error)
	PutBroker(ctx context.Context, broker models.Broker) error
	ListBrokers(ctx context.Context) ([]models.Broker, error)
}

// BrokerTable implements BrokerStore against DynamoDB.
type BrokerTable struct {
	Client API
	Table  string
}

// GetBroker finds a broker by its id.
func (t *BrokerTable) GetBroker(ctx context.Context, id string) (*models.Broker, error) {
	pk, sk := models.BrokerKey(id)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting broker %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("broker %s not found", id)
	}
	var broker models.Broker
	if err := attributevalue.UnmarshalMap(out.Item, &broker); err != nil {
		return nil, fmt.Errorf("unmarshaling broker %s: %w", id, err)
	}
	return &broker, nil
}

// PutBroker writes a broker record, deriving its key attributes.
func (t *BrokerTable) PutBroker(ctx context.Context, broker models.Broker) error {
	broker.PK, broker.SK = models.BrokerKey(broker.ID)
	item, err := attributevalue.MarshalMap(broker)
	if err != nil {
		return fmt.Errorf("marshaling broker %s: %w", broker.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting broker %s: %w", broker.ID, err)
	}
	return nil
}

// ListBrokers returns all brokers. Reference data, carrier-independent.
func (t *BrokerTable) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	brokers := []models.Broker{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := t.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(t.Table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning brokers: %w", err)
		}
		var page []models.Broker
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling brokers: %w", err)
		}
		brokers = append(brokers, page...)
		if out.LastEvaluatedKey == nil {
			return brokers, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
