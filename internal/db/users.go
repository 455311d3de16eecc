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

// UserStore defines the interface for user database operations
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PutUser(ctx context.Context, user models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersByCarrier(ctx context.Context, carrierID string) ([]models.User, error)
	BatchGetUsers(ctx context.Context, ids []string) ([]models.User, error)
	AddSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error
	RemoveSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error
	BackfillUserDefaults(ctx context.Context, userID string) error
}

// UserTable implements UserStore against DynamoDB.
type UserTable struct {
	Client API
	Table  string
}

// GetUser finds a user by their id.
func (t *UserTable) GetUser(ctx context.Context, id string) (*models.User, error) {
	pk, sk := models.UserKey(id)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("user %s not found", id)
	}
	var user models.User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshaling user %s: %w", id, err)
	}
	return &user, nil
}

// PutUser writes a user record, deriving its key attributes.
func (t *UserTable) PutUser(ctx context.Context, user models.User) error {
	user.PK, user.SK = models.UserKey(user.ID)
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshaling user %s: %w", user.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting user %s: %w", user.ID, err)
	}
	return nil
}

// FindUserByEmail probes the email index. Returns NotFound when no user
// carries the address.
func (t *UserTable) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		IndexName:              aws.String(IndexEmail),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("querying users by email: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, apperr.NotFound("no user with email %s", email)
	}
	var user models.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		return nil, fmt.Errorf("unmarshaling user by email: %w", err)
	}
	return &user, nil
}

// ListUsersByCarrier returns every user belonging to the carrier.
func (t *UserTable) ListUsersByCarrier(ctx context.Context, carrierID string) ([]models.User, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		IndexName:              aws.String(IndexCarrier),
		KeyConditionExpression: aws.String("carrier_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: carrierID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying users by carrier %s: %w", carrierID, err)
	}
	users := []models.User{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, fmt.Errorf("unmarshaling users: %w", err)
	}
	return users, nil
}

// BatchGetUsers fetches the users among the given ids. Missing ids are
// simply absent from the result.
func (t *UserTable) BatchGetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		pk, sk := models.UserKey(id)
		keys = append(keys, itemKey(pk, sk))
	}
	items, err := batchGet(ctx, t.Client, t.Table, keys)
	if err != nil {
		return nil, fmt.Errorf("batch getting users: %w", err)
	}
	users := []models.User{}
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("unmarshaling users: %w", err)
	}
	return users, nil
}

// AddSubscriptions adds ids to the user's watch-list sets as a native
// set ADD, so concurrent subscribers never overwrite each other.
func (t *UserTable) AddSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	return t.updateSets(ctx, userID, "ADD", adminIDs, carrierIDs)
}

// RemoveSubscriptions removes ids from the watch-list sets atomically.
func (t *UserTable) RemoveSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	return t.updateSets(ctx, userID, "DELETE", adminIDs, carrierIDs)
}

func (t *UserTable) updateSets(ctx context.Context, userID, verb string, adminIDs, carrierIDs []string) error {
	expr := verb + " "
	values := map[string]types.AttributeValue{}
	if len(adminIDs) > 0 {
		expr += "subscribed_admin_ids :a"
		values[":a"] = &types.AttributeValueMemberSS{Value: adminIDs}
	}
	if len(carrierIDs) > 0 {
		if len(adminIDs) > 0 {
			expr += ", "
		}
		expr += "subscribed_carrier_ids :c"
		values[":c"] = &types.AttributeValueMemberSS{Value: carrierIDs}
	}
	if len(values) == 0 {
		return nil
	}

	pk, sk := models.UserKey(userID)
	_, err := t.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.Table),
		Key:                       itemKey(pk, sk),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("updating subscriptions for %s: %w", userID, err)
	}
	return nil
}

// BackfillUserDefaults adds every post-migration field with a safe default
// without disturbing values that are already populated, so re-runs are
// idempotent.
func (t *UserTable) BackfillUserDefaults(ctx context.Context, userID string) error {
	pk, sk := models.UserKey(userID)
	_, err := t.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
		UpdateExpression: aws.String(
			"SET phone = if_not_exists(phone, :empty), " +
				"cdl_number = if_not_exists(cdl_number, :empty), " +
				"tax_id = if_not_exists(tax_id, :empty), " +
				"rate = if_not_exists(rate, :zero), " +
				"is_active = if_not_exists(is_active, :active)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty":  &types.AttributeValueMemberS{Value: ""},
			":zero":   &types.AttributeValueMemberN{Value: "0"},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("backfilling user %s: %w", userID, err)
	}
	return nil
}
