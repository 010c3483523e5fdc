package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceIterator struct {
	keys []string
	pos  int
	err  error
}

func (it *sliceIterator) Next(context.Context) bool {
	if it.pos >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Val() string { return it.keys[it.pos-1] }

func (it *sliceIterator) Err() error { return it.err }

func TestScanKeysDropsRepeatedKeys(t *testing.T) {
	it := &sliceIterator{keys: []string{
		"assist:document:a@x.com:1",
		"assist:document:a@x.com:2",
		"assist:document:a@x.com:1",
		"assist:document:a@x.com:3",
		"assist:document:a@x.com:2",
	}}

	keys, err := scanKeys(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"assist:document:a@x.com:1",
		"assist:document:a@x.com:2",
		"assist:document:a@x.com:3",
	}, keys)
}

func TestScanKeysReturnsCursorError(t *testing.T) {
	it := &sliceIterator{keys: []string{"assist:a"}, err: errors.New("connection reset")}

	_, err := scanKeys(context.Background(), it)
	assert.EqualError(t, err, "connection reset")
}
