package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/canvas/internal/sqlc"
)

// Querier defines the interface for database operations on documents and versions.
// Following Go best practices: interfaces are defined by the consumer, not the provider.
//
// This interface allows Store to depend on abstraction rather than concrete
// implementation, improving testability and flexibility.
type Querier interface {
	// Document operations
	SaveDocument(ctx context.Context, arg sqlc.SaveDocumentParams) (sqlc.Document, error)
	GetDocument(ctx context.Context, id string) (sqlc.Document, error)
	ListDocuments(ctx context.Context, arg sqlc.ListDocumentsParams) ([]sqlc.Document, error)
	DeleteDocument(ctx context.Context, id string) (int64, error)

	// Version operations
	AddDocumentVersion(ctx context.Context, arg sqlc.AddDocumentVersionParams) (sqlc.DocumentVersion, error)
	ListDocumentVersions(ctx context.Context, documentID string) ([]sqlc.DocumentVersion, error)
	GetDocumentVersion(ctx context.Context, id pgtype.UUID) (sqlc.DocumentVersion, error)
}

// Store manages document persistence with PostgreSQL backend.
// Version history is append-only: Save and Restore add version rows,
// nothing ever rewrites or deletes an existing snapshot.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	querier Querier
	pool    *pgxpool.Pool // Database pool for transaction support
	logger  *slog.Logger
}

// NewStore creates a new Store instance.
//
// Parameters:
//   - querier: Database querier implementing Querier interface
//   - pool: PostgreSQL connection pool (for transaction support, can be nil for tests)
//   - logger: Logger for debugging (nil = use default)
//
// Example (production):
//
//	store := artifact.NewStore(sqlc.New(dbPool), dbPool, logger)
//
// Example (testing with mock):
//
//	store := artifact.NewStore(mockQuerier, nil, log.NewNop())
func NewStore(querier Querier, pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		querier: querier,
		pool:    pool,
		logger:  logger,
	}
}

// Save creates or updates a document and appends a version snapshot of its
// content. Both writes happen in one transaction when a pool is available.
// The document's timestamps are refreshed from the returned row.
func (s *Store) Save(ctx context.Context, d *Document) error {
	if err := ValidateID(d.ID); err != nil {
		return err
	}
	if d.Kind == "" {
		d.Kind = KindText
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}

	if s.pool == nil {
		return s.saveNonTransactional(ctx, d)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	q := sqlc.New(tx)
	if err := s.saveWith(ctx, q, d); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	s.logger.Debug("saved document", "id", d.ID, "title", d.Title, "kind", d.Kind)
	return nil
}

// saveNonTransactional saves without a transaction (testing with mock querier).
func (s *Store) saveNonTransactional(ctx context.Context, d *Document) error {
	return s.saveWith(ctx, s.querier, d)
}

// saveWith performs the upsert + version append against the given querier.
func (s *Store) saveWith(ctx context.Context, q Querier, d *Document) error {
	var language *string
	if d.Language != "" {
		language = &d.Language
	}

	row, err := q.SaveDocument(ctx, sqlc.SaveDocumentParams{
		ID:       d.ID,
		Title:    d.Title,
		Kind:     string(d.Kind),
		Language: language,
		Content:  d.Content,
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", d.ID, err)
	}

	if _, err := q.AddDocumentVersion(ctx, sqlc.AddDocumentVersionParams{
		DocumentID: d.ID,
		Content:    d.Content,
	}); err != nil {
		return fmt.Errorf("append version for document %s: %w", d.ID, err)
	}

	d.CreatedAt = row.CreatedAt.Time
	d.UpdatedAt = row.UpdatedAt.Time
	return nil
}

// Get retrieves a document by id.
// Returns ErrNotFound if the document does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	row, err := s.querier.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}

	return sqlcDocumentToDocument(row), nil
}

// List returns persisted documents ordered by most recently updated.
func (s *Store) List(ctx context.Context, limit, offset int32) ([]*Document, error) {
	rows, err := s.querier.ListDocuments(ctx, sqlc.ListDocumentsParams{
		ResultLimit:  limit,
		ResultOffset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]*Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, sqlcDocumentToDocument(row))
	}

	s.logger.Debug("listed documents", "count", len(docs), "limit", limit, "offset", offset)
	return docs, nil
}

// Versions returns the full version history of a document, oldest first.
// Returns ErrNotFound if the document does not exist.
func (s *Store) Versions(ctx context.Context, documentID string) ([]*Version, error) {
	if err := ValidateID(documentID); err != nil {
		return nil, err
	}

	// Distinguish "no versions" from "no such document".
	if _, err := s.querier.GetDocument(ctx, documentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}

	rows, err := s.querier.ListDocumentVersions(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions for document %s: %w", documentID, err)
	}

	versions := make([]*Version, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, sqlcVersionToVersion(row))
	}
	return versions, nil
}

// Version fetches a single version snapshot by id.
// Returns ErrNotFound if no such version exists.
func (s *Store) Version(ctx context.Context, versionID uuid.UUID) (*Version, error) {
	row, err := s.querier.GetDocumentVersion(ctx, pgtype.UUID{Bytes: versionID, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get version %s: %w", versionID, err)
	}
	return sqlcVersionToVersion(row), nil
}

// Restore appends a new version whose content equals the given snapshot and
// makes it the document's current content. History is never rewritten: after
// a restore of version k of n the list has n+1 entries and the original n
// are untouched.
func (s *Store) Restore(ctx context.Context, documentID, content string) (*Version, error) {
	if err := ValidateID(documentID); err != nil {
		return nil, err
	}

	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if s.pool == nil {
		return s.restoreWith(ctx, s.querier, doc, content)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin restore transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	version, err := s.restoreWith(ctx, sqlc.New(tx), doc, content)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit restore transaction: %w", err)
	}

	s.logger.Debug("restored document version",
		"document_id", documentID,
		"version_id", version.ID)
	return version, nil
}

// restoreWith updates the document content and appends the version row.
func (s *Store) restoreWith(ctx context.Context, q Querier, doc *Document, content string) (*Version, error) {
	var language *string
	if doc.Language != "" {
		language = &doc.Language
	}

	if _, err := q.SaveDocument(ctx, sqlc.SaveDocumentParams{
		ID:       doc.ID,
		Title:    doc.Title,
		Kind:     string(doc.Kind),
		Language: language,
		Content:  content,
	}); err != nil {
		return nil, fmt.Errorf("update document %s: %w", doc.ID, err)
	}

	row, err := q.AddDocumentVersion(ctx, sqlc.AddDocumentVersionParams{
		DocumentID: doc.ID,
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("append restored version for document %s: %w", doc.ID, err)
	}

	return sqlcVersionToVersion(row), nil
}

// Delete removes a document and its version history (CASCADE).
// Returns ErrNotFound if the document does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	rowsAffected, err := s.querier.DeleteDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted document", "id", id)
	return nil
}

// sqlcDocumentToDocument converts sqlc.Document to artifact.Document.
// Persisted documents are settled; status is always StatusIdle.
func sqlcDocumentToDocument(row sqlc.Document) *Document {
	d := &Document{
		ID:        row.ID,
		Title:     row.Title,
		Kind:      Kind(row.Kind),
		Content:   row.Content,
		Status:    StatusIdle,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.Language != nil {
		d.Language = *row.Language
	}
	return d
}

// sqlcVersionToVersion converts sqlc.DocumentVersion to artifact.Version.
func sqlcVersionToVersion(row sqlc.DocumentVersion) *Version {
	return &Version{
		ID:         pgUUIDToUUID(row.ID),
		DocumentID: row.DocumentID,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt.Time,
	}
}

// pgUUIDToUUID converts pgtype.UUID to uuid.UUID.
func pgUUIDToUUID(pgUUID pgtype.UUID) uuid.UUID {
	if !pgUUID.Valid {
		return uuid.Nil
	}
	return pgUUID.Bytes
}
