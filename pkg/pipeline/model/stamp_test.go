package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

func TestStampLineage(t *testing.T) {
	t.Parallel()

	s1 := model.NewStamp()
	s2 := s1.Next()
	other := model.NewStamp()

	assert.True(t, s1.SameLineage(s2))
	assert.False(t, s1.SameLineage(other))
	assert.True(t, s1.Less(s2))
	assert.False(t, s2.Less(s1))
	assert.False(t, s1.Equal(other))
	assert.True(t, s1.Next().Equal(s2))
	assert.Equal(t, uint64(1), s2.Step())
}

func TestStampsInSync(t *testing.T) {
	t.Parallel()

	s := model.NewStamp()

	assert.True(t, model.StampsInSync())
	assert.True(t, model.StampsInSync(s))
	assert.True(t, model.StampsInSync(s.Next(), s.Next(), s.Next()))
	assert.False(t, model.StampsInSync(s, s.Next()))
	assert.False(t, model.StampsInSync(s, model.NewStamp()))
}

func TestStampStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.IntRange(1, 200).Draw(t, "steps")

		prev := model.NewStamp()
		for range steps {
			next := prev.Next()
			if !prev.Less(next) {
				t.Fatalf("%s is not before %s", prev, next)
			}
			if next.Compare(prev) != 1 {
				t.Fatalf("compare of %s and %s is not 1", next, prev)
			}
			prev = next
		}
	})
}
