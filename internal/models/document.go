package models

import "time"

// Permissions controls who may act on a document or note beyond its owner.
type Permissions struct {
	IsPublic  bool     `dynamodbav:"is_public" json:"is_public"`
	CanView   []string `dynamodbav:"can_view,stringset,omitempty" json:"can_view,omitempty"`
	CanEdit   []string `dynamodbav:"can_edit,stringset,omitempty" json:"can_edit,omitempty"`
	CanDelete []string `dynamodbav:"can_delete,stringset,omitempty" json:"can_delete,omitempty"`
	CanShare  []string `dynamodbav:"can_share,stringset,omitempty" json:"can_share,omitempty"`
}

// DocumentMetadata describes an uploaded file. The binary payload lives in
// the object store under ObjectKey; this record never leaves the service
// for callers who fail the access check.
type DocumentMetadata struct {
	PK          string      `dynamodbav:"PK" json:"-"`
	SK          string      `dynamodbav:"SK" json:"-"`
	ID          string      `dynamodbav:"document_id" json:"id"`
	EntityType  string      `dynamodbav:"entity_type" json:"entity_type"`
	EntityID    string      `dynamodbav:"entity_id" json:"entity_id"`
	OwnerID     string      `dynamodbav:"owner_id" json:"owner_id"`
	FileName    string      `dynamodbav:"file_name" json:"file_name"`
	Size        int64       `dynamodbav:"size" json:"size"`
	ContentType string      `dynamodbav:"content_type" json:"content_type"`
	ObjectKey   string      `dynamodbav:"object_key" json:"-"`
	Category    string      `dynamodbav:"category,omitempty" json:"category,omitempty"`
	FolderID    string      `dynamodbav:"folder_id,omitempty" json:"folder_id,omitempty"`
	Permissions Permissions `dynamodbav:"permissions" json:"permissions"`
	UploadedAt  time.Time   `dynamodbav:"uploaded_at" json:"uploaded_at"`
}

// Note is a free-form annotation on an entity. It shares the document
// permission shape so the same access predicate applies to both.
type Note struct {
	PK          string      `dynamodbav:"PK" json:"-"`
	SK          string      `dynamodbav:"SK" json:"-"`
	ID          string      `dynamodbav:"note_id" json:"id"`
	EntityType  string      `dynamodbav:"entity_type" json:"entity_type"`
	EntityID    string      `dynamodbav:"entity_id" json:"entity_id"`
	OwnerID     string      `dynamodbav:"owner_id" json:"owner_id"`
	Body        string      `dynamodbav:"body" json:"body"`
	Permissions Permissions `dynamodbav:"permissions" json:"permissions"`
	CreatedAt   time.Time   `dynamodbav:"created_at" json:"created_at"`
}

// DocumentKey returns the composite key identifying a document record,
// grouped under its owning entity.
func DocumentKey(entityType, entityID, documentID string) (pk, sk string) {
	return entityType + "#" + entityID, "DOC#" + documentID
}

// NoteKey returns the composite key identifying a note record.
func NoteKey(entityType, entityID, noteID string) (pk, sk string) {
	return entityType + "#" + entityID, "NOTE#" + noteID
}
