package thread

import (
	"math/rand"
	"testing"

	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	forest, err := Build([]model.Comment{
		comment("A", ""),
		comment("B", "A"),
		comment("C", "B"),
	})
	require.NoError(t, err)
	require.Len(t, forest, 1)

	root := forest[0]

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{name: "root itself", target: "A", want: true},
		{name: "direct reply", target: "B", want: true},
		{name: "nested reply", target: "C", want: true},
		{name: "absent", target: "Z", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(root, commentId(tt.target)))
		})
	}

	assert.False(t, Contains(nil, commentId("A")))
}

func TestIndexOf(t *testing.T) {
	forest, err := Build([]model.Comment{
		comment("first", ""),
		comment("second", ""),
		comment("reply", "second"),
		comment("deep", "reply"),
		comment("third", ""),
	})
	require.NoError(t, err)
	require.Len(t, forest, 3)

	assert.Equal(t, 0, IndexOf(forest, commentId("first")))
	assert.Equal(t, 1, IndexOf(forest, commentId("second")))
	assert.Equal(t, 1, IndexOf(forest, commentId("deep")))
	assert.Equal(t, 2, IndexOf(forest, commentId("third")))
	assert.Equal(t, -1, IndexOf(forest, commentId("missing")))
	assert.Equal(t, -1, IndexOf(nil, commentId("first")))
	assert.Equal(t, -1, IndexOf(forest, uuid.Nil))
}

func TestLocatorProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		records := randomThread(r, 1+r.Intn(100))

		forest, err := Build(records)
		require.NoError(t, err)

		for _, record := range records {
			index := IndexOf(forest, record.Id)
			require.GreaterOrEqual(t, index, 0)
			assert.True(t, Contains(forest[index], record.Id))
		}

		absent := uuid.New()
		assert.Equal(t, -1, IndexOf(forest, absent))
		for _, root := range forest {
			assert.False(t, Contains(root, absent))
		}
	}
}

func TestCount(t *testing.T) {
	forest, err := Build([]model.Comment{
		comment("A", ""),
		comment("B", "A"),
		comment("C", "A"),
		comment("D", ""),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, Count(forest))
	assert.Equal(t, 0, Count(nil))
}
