package repositories

import (
	"fmt"

	"github.com/vsinha/spares/pkg/domain/entities"
)

// DocumentFilter narrows document listings. Empty fields match everything.
type DocumentFilter struct {
	Status string
	// RefID matches documents that reference the given document id.
	RefID string
}

// DocumentRepository stores every document kind. Save is optimistic: the
// document's version must match the stored one (zero for new documents) and
// is incremented on success, otherwise a *entities.ConflictError is returned.
type DocumentRepository interface {
	Get(kind entities.DocumentKind, id string) (entities.Document, error)
	GetByNumber(kind entities.DocumentKind, number string) (entities.Document, error)
	List(kind entities.DocumentKind, filter DocumentFilter) ([]entities.Document, error)
	Save(doc entities.Document) error
}

// GetDocument loads a document of type T
func GetDocument[T entities.Document](repo DocumentRepository, id string) (T, error) {
	var zero T
	doc, err := repo.Get(zero.Kind(), id)
	if err != nil {
		return zero, err
	}
	typed, ok := doc.(T)
	if !ok {
		return zero, fmt.Errorf("document %s has type %T, expected %T", id, doc, zero)
	}
	return typed, nil
}

// ListDocuments lists documents of type T
func ListDocuments[T entities.Document](repo DocumentRepository, filter DocumentFilter) ([]T, error) {
	var zero T
	docs, err := repo.List(zero.Kind(), filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		typed, ok := doc.(T)
		if !ok {
			return nil, fmt.Errorf("document %s has type %T, expected %T", doc.DocID(), doc, zero)
		}
		out = append(out, typed)
	}
	return out, nil
}
