package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse/internal/core/domain"
)

func loaded(t *testing.T, articles ...domain.Article) *Mirror[domain.Article] {
	t.Helper()
	m := New[domain.Article]()
	err := m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		return articles, nil
	})
	require.NoError(t, err)
	return m
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1"}, domain.Article{ID: "a2"})

	err := m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		return []domain.Article{{ID: "a3"}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Article{{ID: "a3"}}, m.Items())
	assert.True(t, m.Loaded())
	assert.False(t, m.IsLoading())
}

func TestLoad_FailureKeepsPreviousItems(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1", AmountInStock: 4})
	boom := errors.New("boom")

	err := m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []domain.Article{{ID: "a1", AmountInStock: 4}}, m.Items())
	assert.False(t, m.IsLoading())
}

func TestLoad_FlagSetDuringFetch(t *testing.T) {
	m := New[domain.Article]()
	var during bool

	_ = m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		during = m.IsLoading()
		return nil, nil
	})

	assert.True(t, during)
	assert.False(t, m.IsLoading())
	assert.NotNil(t, m.Items())
}

func TestLoad_OverlappingKeepsNewest(t *testing.T) {
	m := New[domain.Article]()
	release := make(chan struct{})
	started := make(chan struct{})
	olderDone := make(chan error, 1)

	go func() {
		olderDone <- m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
			close(started)
			<-release
			return []domain.Article{{ID: "a1", AmountInStock: 1}}, nil
		})
	}()
	<-started

	err := m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		return []domain.Article{{ID: "a1", AmountInStock: 2}}, nil
	})
	require.NoError(t, err)
	assert.True(t, m.IsLoading())

	close(release)
	select {
	case err := <-olderDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("older load did not return")
	}

	assert.Equal(t, []domain.Article{{ID: "a1", AmountInStock: 2}}, m.Items())
	assert.False(t, m.IsLoading())
	assert.True(t, m.Loaded())
}

func TestLoad_OlderFailureAfterNewerSuccess(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1", AmountInStock: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	boom := errors.New("boom")
	olderDone := make(chan error, 1)

	go func() {
		olderDone <- m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
			close(started)
			<-release
			return nil, boom
		})
	}()
	<-started
	require.NoError(t, m.Load(context.Background(), func(context.Context) ([]domain.Article, error) {
		return []domain.Article{{ID: "a1", AmountInStock: 3}}, nil
	}))
	close(release)

	assert.ErrorIs(t, <-olderDone, boom)
	assert.Equal(t, []domain.Article{{ID: "a1", AmountInStock: 3}}, m.Items())
	assert.False(t, m.IsLoading())
}

func TestApplyCreated(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1"})
	m.ApplyCreated(domain.Article{ID: "a2", Name: "bolt"})

	assert.Equal(t, 2, m.Len())
	got, ok := m.Get("a2")
	require.True(t, ok)
	assert.Equal(t, "bolt", got.Name)
}

func TestApplyUpdated(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1", AmountInStock: 1})

	assert.True(t, m.ApplyUpdated("a1", domain.Article{ID: "a1", AmountInStock: 9}))
	assert.False(t, m.ApplyUpdated("missing", domain.Article{ID: "missing"}))

	assert.Equal(t, []domain.Article{{ID: "a1", AmountInStock: 9}}, m.Items())
}

func TestApplyUpdatedMany(t *testing.T) {
	untouched := domain.Article{ID: "a2", Name: "plank", AmountInStock: 7}
	m := loaded(t,
		domain.Article{ID: "a1", Name: "leg", AmountInStock: 10},
		untouched,
		domain.Article{ID: "a3", Name: "screw", AmountInStock: 3},
	)

	replaced := m.ApplyUpdatedMany([]domain.Article{
		{ID: "a1", Name: "leg", AmountInStock: 4},
		{ID: "a3", Name: "screw v2", AmountInStock: 0},
		{ID: "unknown", AmountInStock: 1},
	})

	assert.Equal(t, 2, replaced)
	assert.Equal(t, []domain.Article{
		{ID: "a1", Name: "leg", AmountInStock: 4},
		untouched,
		{ID: "a3", Name: "screw v2", AmountInStock: 0},
	}, m.Items())
}

func TestApplyDeleted(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1"}, domain.Article{ID: "a2"})
	m.ApplyDeleted("a1")
	m.ApplyDeleted("missing")

	assert.Equal(t, []domain.Article{{ID: "a2"}}, m.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	m := loaded(t, domain.Article{ID: "a1", AmountInStock: 1})
	items := m.Items()
	items[0].AmountInStock = 100

	got, _ := m.Get("a1")
	assert.Equal(t, 1, got.AmountInStock)
}
