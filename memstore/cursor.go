package memstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// cursor iterates over a snapshot taken when Find ran.
type cursor struct {
	docs    []bson.Raw
	pos     int
	current bson.Raw
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {

	if c.err != nil {
		return false
	}

	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}

	if c.pos >= len(c.docs) {
		c.current = nil
		return false
	}

	c.current = c.docs[c.pos]
	c.pos++
	return true
}

func (c *cursor) Decode(val any) error {

	if c.current == nil {
		return errors.New("cursor has no current document")
	}

	return bson.Unmarshal(c.current, val)
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close(ctx context.Context) error {

	c.docs = nil
	c.current = nil
	return nil
}
