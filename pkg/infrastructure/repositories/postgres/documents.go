package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type documentRepo struct{ t *tx }

func (r documentRepo) Get(kind entities.DocumentKind, id string) (entities.Document, error) {
	var m documentModel
	if err := first(r.t.db, &m, string(kind), id, "kind = ? AND id = ?", string(kind), id); err != nil {
		return nil, err
	}
	return decodeDocument(&m)
}

func (r documentRepo) GetByNumber(kind entities.DocumentKind, number string) (entities.Document, error) {
	var m documentModel
	if err := first(r.t.db, &m, string(kind), number, "kind = ? AND number = ?", string(kind), number); err != nil {
		return nil, err
	}
	return decodeDocument(&m)
}

func (r documentRepo) List(kind entities.DocumentKind, filter repositories.DocumentFilter) ([]entities.Document, error) {
	q := r.t.db.Where("kind = ?", string(kind)).Order("number")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.RefID != "" {
		q = q.Where("? = ANY(ref_ids)", filter.RefID)
	}
	var rows []documentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Document, 0, len(rows))
	for i := range rows {
		doc, err := decodeDocument(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Save inserts a new document (version 0) or updates an existing one only if
// the stored version still matches
func (r documentRepo) Save(doc entities.Document) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	expected := doc.DocVersion()
	doc.SetDocVersion(expected + 1)
	m, err := encodeDocument(doc)
	if err != nil {
		doc.SetDocVersion(expected)
		return err
	}

	if expected == 0 {
		err = r.insert(doc, m)
	} else {
		err = r.update(m, expected)
	}
	if err != nil {
		doc.SetDocVersion(expected)
		return err
	}
	return nil
}

// insert checks for a reused id or number first because a failed statement
// aborts the surrounding transaction. The unique index still catches a
// concurrent insert, reported as a conflict.
func (r documentRepo) insert(doc entities.Document, m *documentModel) error {
	var n int64
	if err := r.t.db.Model(&documentModel{}).Where("kind = ? AND id = ?", m.Kind, m.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return r.conflict(doc.Kind(), m.ID, 0)
	}
	if err := r.t.db.Model(&documentModel{}).Where("kind = ? AND number = ?", m.Kind, m.Number).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return entities.NewValidationError("number", m.Number, "document number already exists")
	}
	err := r.t.db.Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &entities.ConflictError{Entity: m.Kind, ID: m.ID, ExpectedVersion: 0, ActualVersion: 1}
	}
	return err
}

func (r documentRepo) update(m *documentModel, expected int) error {
	res := r.t.db.Model(&documentModel{}).
		Where("kind = ? AND id = ? AND version = ?", m.Kind, m.ID, expected).
		Updates(map[string]any{
			"number":     m.Number,
			"status":     m.Status,
			"version":    m.Version,
			"ref_ids":    m.RefIDs,
			"payload":    m.Payload,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflict(entities.DocumentKind(m.Kind), m.ID, expected)
	}
	return nil
}

func (r documentRepo) conflict(kind entities.DocumentKind, id string, expected int) error {
	var actual struct{ Version int }
	err := r.t.db.Model(&documentModel{}).Select("version").Where("kind = ? AND id = ?", string(kind), id).Take(&actual).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return &entities.ConflictError{
		Entity:          string(kind),
		ID:              id,
		ExpectedVersion: expected,
		ActualVersion:   actual.Version,
	}
}

func encodeDocument(doc entities.Document) (*documentModel, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", doc.Kind(), doc.DocID(), err)
	}
	return &documentModel{
		ID:      doc.DocID(),
		Kind:    string(doc.Kind()),
		Number:  doc.DocNumber(),
		Status:  doc.State(),
		Version: doc.DocVersion(),
		RefIDs:  pq.StringArray(doc.RefIDs()),
		Payload: datatypes.JSON(payload),
	}, nil
}

func decodeDocument(m *documentModel) (entities.Document, error) {
	doc, err := entities.NewDocumentOfKind(entities.DocumentKind(m.Kind))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(m.Payload, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", m.Kind, m.ID, err)
	}
	doc.SetDocVersion(m.Version)
	return doc, nil
}
