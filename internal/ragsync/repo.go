package ragsync

import (
	"context"
	"database/sql"
	"encoding/json"

	"campus-commerce/pkg/utils"
)

// Chunk is one retrieval row derived from a product. Products are small
// enough to fit a single chunk today; chunk_index leaves room for splitting.
type Chunk struct {
	SourceID   string
	ChunkIndex int
	Text       string
	Embedding  []float64
}

// Repository replaces and removes chunks by source.
type Repository interface {
	Replace(ctx context.Context, sourceID string, chunks []Chunk) error
	DeleteBySource(ctx context.Context, sourceID string) error
}

// PostgresRepo stores chunks in Postgres.
//
// Expected table:
//
//	CREATE TABLE rag_chunks (
//	    source_id   text NOT NULL,
//	    chunk_index integer NOT NULL,
//	    text        text NOT NULL,
//	    embedding   jsonb NOT NULL,
//	    PRIMARY KEY (source_id, chunk_index)
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Replace swaps all chunks for a source atomically: delete-then-insert in one
// transaction so readers never observe a half-updated product.
func (r *PostgresRepo) Replace(ctx context.Context, sourceID string, chunks []Chunk) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rag_chunks WHERE source_id = $1`, sourceID); err != nil {
			return err
		}
		for _, c := range chunks {
			embedding, err := json.Marshal(c.Embedding)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO rag_chunks (source_id, chunk_index, text, embedding)
				VALUES ($1, $2, $3, $4)
			`, c.SourceID, c.ChunkIndex, c.Text, embedding); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepo) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rag_chunks WHERE source_id = $1`, sourceID)
	return err
}
