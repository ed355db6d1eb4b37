package redis

import (
	"context"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
)

// HSet writes hash fields at the given key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	builder := s.b().Hset().Key(key).FieldValue()
	for f, v := range fields {
		builder = builder.FieldValue(f, v)
	}
	if err := s.do(ctx, builder.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}
