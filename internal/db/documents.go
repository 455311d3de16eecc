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

// DocumentStore defines the interface for document metadata and note
// operations. Payloads live in the object store; only metadata is here.
type DocumentStore interface {
	PutDocument(ctx context.Context, doc models.DocumentMetadata) error
	GetDocument(ctx context.Context, entityType, entityID, documentID string) (*models.DocumentMetadata, error)
	ListDocumentsByEntity(ctx context.Context, entityType, entityID string) ([]models.DocumentMetadata, error)
	DeleteDocument(ctx context.Context, entityType, entityID, documentID string) error
	PutNote(ctx context.Context, note models.Note) error
	GetNote(ctx context.Context, entityType, entityID, noteID string) (*models.Note, error)
}

// DocumentTable implements DocumentStore against DynamoDB.
type DocumentTable struct {
	Client API
	Table  string
}

// PutDocument writes a document metadata record under its owning entity.
func (t *DocumentTable) PutDocument(ctx context.Context, doc models.DocumentMetadata) error {
	doc.PK, doc.SK = models.DocumentKey(doc.EntityType, doc.EntityID, doc.ID)
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s: %w", doc.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument finds a document's metadata under its owning entity.
func (t *DocumentTable) GetDocument(ctx context.Context, entityType, entityID, documentID string) (*models.DocumentMetadata, error) {
	pk, sk := models.DocumentKey(entityType, entityID, documentID)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", documentID, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("document %s not found", documentID)
	}
	var doc models.DocumentMetadata
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document %s: %w", documentID, err)
	}
	return &doc, nil
}

// ListDocumentsByEntity returns all document metadata under one entity.
func (t *DocumentTable) ListDocumentsByEntity(ctx context.Context, entityType, entityID string) ([]models.DocumentMetadata, error) {
	out, err := t.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.Table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: entityType + "#" + entityID},
			":prefix": &types.AttributeValueMemberS{Value: "DOC#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying documents for %s %s: %w", entityType, entityID, err)
	}
	docs := []models.DocumentMetadata{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &docs); err != nil {
		return nil, fmt.Errorf("unmarshaling documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document metadata record.
func (t *DocumentTable) DeleteDocument(ctx context.Context, entityType, entityID, documentID string) error {
	pk, sk := models.DocumentKey(entityType, entityID, documentID)
	_, err := t.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	return nil
}

// PutNote writes a note record under its owning entity.
func (t *DocumentTable) PutNote(ctx context.Context, note models.Note) error {
	note.PK, note.SK = models.NoteKey(note.EntityType, note.EntityID, note.ID)
	item, err := attributevalue.MarshalMap(note)
	if err != nil {
		return fmt.Errorf("marshaling note %s: %w", note.ID, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting note %s: %w", note.ID, err)
	}
	return nil
}

// GetNote finds a note under its owning entity.
func (t *DocumentTable) GetNote(ctx context.Context, entityType, entityID, noteID string) (*models.Note, error) {
	pk, sk := models.NoteKey(entityType, entityID, noteID)
	out, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", noteID, err)
	}
	if out.Item == nil {
		return nil, apperr.NotFound("note %s not found", noteID)
	}
	var note models.Note
	if err := attributevalue.UnmarshalMap(out.Item, &note); err != nil {
		return nil, fmt.Errorf("unmarshaling note %s: %w", noteID, err)
	}
	return &note, nil
}
