package db

import (
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// drainDocs decodes every document of an iterator into T, assigning the
// document ID through setID. Documents that fail to decode are logged and
// skipped: the store is schema-less and legacy documents occasionally carry
// shapes the current model no longer accepts.
func drainDocs[T any](logger *zap.Logger, iter *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer iter.Stop()

	out := []*T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}
		item := new(T)
		if err := doc.DataTo(item); err != nil {
			logger.Warn("skipping undecodable document",
				zap.String("id", doc.Ref.ID), zap.Error(err))
			continue
		}
		setID(item, doc.Ref.ID)
		out = append(out, item)
	}
	return out, nil
}
