package inmemdb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/portal/core/quiz"
)

func Test_historyStore(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_ = store.Append(ctx, "u-1", quiz.Entry{ExamID: "7", Score: score, Total: 20})
		}(i)
	}
	wg.Wait()
	require.NoError(t, store.Append(ctx, "u-2", quiz.Entry{ExamID: "3", Score: 1, Total: 1}))

	entries, err := store.List(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, entries, 20)

	// listed entries are a copy
	entries[0].Score = 99
	again, err := store.List(ctx, "u-1")
	require.NoError(t, err)
	assert.NotEqual(t, 99, again[0].Score)

	entries, err = store.List(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, []quiz.Entry{{ExamID: "3", Score: 1, Total: 1}}, entries)

	entries, err = store.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
