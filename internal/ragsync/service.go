package ragsync

import (
	"context"
	"fmt"
	"time"

	"campus-commerce/internal/catalog"
	"campus-commerce/pkg/logger"
)

// Service mirrors catalog products into the retrieval index so the shopping
// assistant can answer over current inventory.
//
// Every operation is best-effort by contract: failures are logged and
// swallowed, a catalog write must never fail because the index is down.
type Service struct {
	embedder Embedder
	repo     Repository
	timeout  time.Duration
}

func NewService(embedder Embedder, repo Repository) *Service {
	return &Service{embedder: embedder, repo: repo, timeout: 15 * time.Second}
}

func (s *Service) SyncProduct(ctx context.Context, p catalog.Product) {
	if s == nil || s.embedder == nil || s.repo == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text := ProductText(p)
	embedding, err := s.embedder.Embed(sctx, text)
	if err != nil {
		logger.From(ctx).Warn("rag sync: embedding failed", "product_id", p.ID, "err", err.Error())
		return
	}

	chunk := Chunk{SourceID: p.ID, ChunkIndex: 0, Text: text, Embedding: embedding}
	if err := s.repo.Replace(sctx, p.ID, []Chunk{chunk}); err != nil {
		logger.From(ctx).Warn("rag sync: chunk replace failed", "product_id", p.ID, "err", err.Error())
		return
	}
	logger.From(ctx).Debug("rag sync: product indexed", "product_id", p.ID)
}

func (s *Service) RemoveProduct(ctx context.Context, productID string) {
	if s == nil || s.repo == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeleteBySource(sctx, productID); err != nil {
		logger.From(ctx).Warn("rag sync: chunk delete failed", "product_id", productID, "err", err.Error())
	}
}

// ProductText renders a product as the text block the assistant retrieves.
func ProductText(p catalog.Product) string {
	desc := p.Description
	if desc == "" {
		desc = "Sin descripción"
	}
	return fmt.Sprintf(
		"Producto: %s\nCategoría: %s\nCarrera: %s\nPrecio: %.2f Bs.\nStock disponible: %d\nDescripción: %s",
		p.Name, p.Category, p.Career, p.Price, p.Stock, desc,
	)
}
