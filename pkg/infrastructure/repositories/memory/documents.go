package memory

import (
	"slices"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type documentRepo struct{ t *tx }

func (r documentRepo) Get(kind entities.DocumentKind, id string) (entities.Document, error) {
	doc, ok := r.t.documents.get(docKey{kind: kind, id: id})
	if !ok {
		return nil, entities.NewNotFoundError(string(kind), id)
	}
	return doc, nil
}

func (r documentRepo) GetByNumber(kind entities.DocumentKind, number string) (entities.Document, error) {
	for _, doc := range r.t.documents.values() {
		if doc.Kind() == kind && doc.DocNumber() == number {
			return doc, nil
		}
	}
	return nil, entities.NewNotFoundError(string(kind), number)
}

func (r documentRepo) List(kind entities.DocumentKind, filter repositories.DocumentFilter) ([]entities.Document, error) {
	var out []entities.Document
	for _, doc := range r.t.documents.values() {
		if doc.Kind() != kind {
			continue
		}
		if filter.Status != "" && doc.State() != filter.Status {
			continue
		}
		if filter.RefID != "" && !slices.Contains(doc.RefIDs(), filter.RefID) {
			continue
		}
		out = append(out, doc)
	}
	sortBy(out, func(d entities.Document) string { return d.DocNumber() })
	return out, nil
}

func (r documentRepo) Save(doc entities.Document) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	key := docKey{kind: doc.Kind(), id: doc.DocID()}
	current := 0
	if existing, ok := r.t.documents.get(key); ok {
		current = existing.DocVersion()
	} else if other, err := r.GetByNumber(doc.Kind(), doc.DocNumber()); err == nil && other.DocID() != doc.DocID() {
		return entities.NewValidationError("number", doc.DocNumber(), "document number already exists")
	}
	if doc.DocVersion() != current {
		return &entities.ConflictError{
			Entity:          string(doc.Kind()),
			ID:              doc.DocID(),
			ExpectedVersion: doc.DocVersion(),
			ActualVersion:   current,
		}
	}
	doc.SetDocVersion(current + 1)
	r.t.documents.put(key, doc)
	return nil
}
