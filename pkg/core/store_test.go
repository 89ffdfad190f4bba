package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_QueueMergesInOrderOnCommit(t *testing.T) {
	var s Store
	s.seed("count", 0)
	s.seed("name", "ada")

	s.Queue(map[string]any{"count": 1})
	s.Queue(map[string]any{"count": 2, "flag": true})

	assert.True(t, s.HasPending())
	assert.Equal(t, map[string]any{"count": 0, "name": "ada"}, s.Read())
	assert.Equal(t, map[string]any{"count": 2, "name": "ada", "flag": true}, s.Next())

	s.Commit()

	assert.False(t, s.HasPending())
	v, ok := s.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_QueueCopiesPartial(t *testing.T) {
	var s Store
	partial := map[string]any{"count": 1}
	s.Queue(partial)
	partial["count"] = 99

	s.Commit()

	v, _ := s.Get("count")
	assert.Equal(t, 1, v)
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	var s Store
	s.seed("count", 1)

	read := s.Read()
	read["count"] = 5

	v, _ := s.Get("count")
	assert.Equal(t, 1, v)
}

func TestStore_EmptyQueueIsIgnored(t *testing.T) {
	var s Store
	s.Queue(nil)
	s.Queue(map[string]any{})

	assert.False(t, s.HasPending())
}

func TestStore_NilReadsAsEmpty(t *testing.T) {
	var s *Store

	assert.Nil(t, s.Read())
	assert.Nil(t, s.Next())
	assert.False(t, s.HasPending())
	_, ok := s.Get("count")
	assert.False(t, ok)
	assert.NotPanics(t, s.Commit)
}
