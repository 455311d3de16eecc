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

// TripStore defines the interface for trip database operations.
type TripStore interface {
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	PutTrip(ctx context.Context, trip models.Trip) error
	ListTripsByCarrier(ctx context.Context, carrierID string) ([]models.Trip, error)
	ListTripsByDriver(ctx context.Context, driverID string) ([]models.Trip, error)
	ListTripsByOwner(ctx context.Context, ownerID string) ([]models.Trip, error)
	ListTripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error)
	ListAllTrips(ctx context.Context) ([]models.Trip, error)
	BackfillTripDefaults(ctx context.Context, tripID string) error
}

// TripTable implements TripStore against DynamoDB.
type TripTable struct {
	Client API
	Table  string
}

// GetTrip finds a trip by its id.
func (t *TripTable) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	pk, sk := models.TripKey(id)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting trip %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("trip %s not found", id)
	}
	var trip models.Trip
	if err := attributevalue.UnmarshalMap(out.Item, &trip); err != nil {
		return nil, fmt.Errorf("unmarshaling trip %s: %w", id, err)
	}
	return &trip, nil
}

// PutTrip writes a trip record, deriving its key attributes.
func (t *TripTable) PutTrip(ctx context.Context, trip models.Trip) error {
	trip.PK, trip.SK = models.TripKey(trip.ID)
	item, err := attributevalue.MarshalMap(trip)
	if err != nil {
		return fmt.Errorf("marshaling trip %s: %w", trip.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting trip %s: %w", trip.ID, err)
	}
	return nil
}

// ListTripsByCarrier returns every trip dispatched under a carrier.
func (t *TripTable) ListTripsByCarrier(ctx context.Context, carrierID string) ([]models.Trip, error) {
	return t.listByIndex(ctx, IndexCarrier, "carrier_id", carrierID)
}

// ListTripsByDriver returns every trip assigned to a driver.
func (t *TripTable) ListTripsByDriver(ctx context.Context, driverID string) ([]models.Trip, error) {
	return t.listByIndex(ctx, IndexDriver, "driver_id", driverID)
}

// ListTripsByOwner returns every trip using one of the owner's trucks.
func (t *TripTable) ListTripsByOwner(ctx context.Context, ownerID string) ([]models.Trip, error) {
	return t.listByIndex(ctx, IndexOwner, "truck_owner_id", ownerID)
}

// ListTripsByStatus returns every trip in one lifecycle state, across
// carriers. Callers scope the result to their own visibility.
func (t *TripTable) ListTripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	// "status" is a reserved word, hence the expression attribute name.
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(t.Table),
		IndexName:                aws.String(IndexStatus),
		KeyConditionExpression:   aws.String("#s = :v"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: string(status)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying trips by status: %w", err)
	}
	trips := []models.Trip{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &trips); err != nil {
		return nil, fmt.Errorf("unmarshaling trips: %w", err)
	}
	return trips, nil
}

func (t *TripTable) listByIndex(ctx context.Context, index, attr, value string) ([]models.Trip, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(attr + " = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying trips by %s: %w", attr, err)
	}
	trips := []models.Trip{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &trips); err != nil {
		return nil, fmt.Errorf("unmarshaling trips: %w", err)
	}
	return trips, nil
}

// ListAllTrips scans the whole table. Admin listing only.
func (t *TripTable) ListAllTrips(ctx context.Context) ([]models.Trip, error) {
	trips := []models.Trip{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := t.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(t.Table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning trips: %w", err)
		}
		var page []models.Trip
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling trips: %w", err)
		}
		trips = append(trips, page...)
		if out.LastEvaluatedKey == nil {
			return trips, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// BackfillTripDefaults adds every post-migration field with a safe default
// without disturbing populated values. Re-runs are idempotent.
func (t *TripTable) BackfillTripDefaults(ctx context.Context, tripID string) error {
	pk, sk := models.TripKey(tripID)
	_, err := t.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
		UpdateExpression: aws.String(
			"SET payment = if_not_exists(payment, :zero), " +
				"expenses = if_not_exists(expenses, :zero), " +
				"mileage = if_not_exists(mileage, :zero), " +
				"truck_owner_id = if_not_exists(truck_owner_id, :empty), " +
				"broker_id = if_not_exists(broker_id, :empty)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":empty": &types.AttributeValueMemberS{Value: ""},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("backfilling trip %s: %w", tripID, err)
	}
	return nil
}
