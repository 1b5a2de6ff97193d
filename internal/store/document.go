package store

import (
	"context"
	"database/sql"
	"fmt"

	"chargemodel/internal/model"
)

// DocumentStore persists uploaded cost documents and their extracted line
// items. A document and its items are written in one transaction.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Create(ctx context.Context, doc *model.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, uploaded_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.ProjectID, doc.Filename, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	for _, item := range doc.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cost_line_items (document_id, label, category, quantity, unit_cost, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, item.Label, string(item.Category), item.Quantity, item.UnitCost, item.Total,
		)
		if err != nil {
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, filename, uploaded_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &doc.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	items, err := s.loadItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return &doc, nil
}

func (s *DocumentStore) ListByProject(ctx context.Context, projectID string) ([]*model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, filename, uploaded_at FROM documents
		 WHERE project_id = ? ORDER BY uploaded_at ASC`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, doc := range docs {
		items, err := s.loadItems(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		doc.Items = items
	}
	return docs, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DocumentStore) loadItems(ctx context.Context, documentID string) ([]model.CostLineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, category, quantity, unit_cost, total FROM cost_line_items
		 WHERE document_id = ? ORDER BY id ASC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	var items []model.CostLineItem
	for rows.Next() {
		var item model.CostLineItem
		var category string
		if err := rows.Scan(&item.Label, &category, &item.Quantity, &item.UnitCost, &item.Total); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		item.Category = model.CostCategory(category)
		items = append(items, item)
	}
	return items, rows.Err()
}
