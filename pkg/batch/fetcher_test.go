package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Sternrassler/fsf-client/pkg/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoFetcher answers each item with {"fsid": "<item>"} after an optional
// per-batch delay.
type echoFetcher struct {
	delay    func(items []search.Item) time.Duration
	failOn   string
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *echoFetcher) FetchBatch(ctx context.Context, _ string, items []search.Item) ([]json.RawMessage, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(items)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		if it.FSID == f.failOn {
			return nil, fmt.Errorf("fetch %s: boom", it.FSID)
		}
		out[i] = json.RawMessage(fmt.Sprintf(`{"fsid":%q}`, it.FSID))
	}
	return out, nil
}

func fsids(n int) []search.Item {
	items := make([]search.Item, n)
	for i := range items {
		items[i] = search.FSID(fmt.Sprint(i + 1))
	}
	return items
}

func decodeIDs(t *testing.T, records []json.RawMessage) []string {
	t.Helper()
	ids := make([]string, len(records))
	for i, r := range records {
		var v struct{ FSID string }
		require.NoError(t, json.Unmarshal(r, &v))
		ids[i] = v.FSID
	}
	return ids
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	items := fsids(25)
	// Earlier batches finish last.
	f := &echoFetcher{delay: func(batch []search.Item) time.Duration {
		first := batch[0].FSID
		switch first {
		case "1":
			return 30 * time.Millisecond
		case "6":
			return 20 * time.Millisecond
		default:
			return time.Millisecond
		}
	}}

	fetcher := NewFetcher(f, Config{MaxConcurrency: 5, Timeout: time.Second})
	records, err := fetcher.FetchAll(context.Background(), "/probability/depth", search.Batches(items, 5))
	require.NoError(t, err)

	want := make([]string, len(items))
	for i, it := range items {
		want[i] = it.FSID
	}
	assert.Equal(t, want, decodeIDs(t, records))
	assert.Equal(t, int32(5), f.calls.Load())
}

func TestFetchAll_ConcurrencyCap(t *testing.T) {
	f := &echoFetcher{delay: func([]search.Item) time.Duration { return 10 * time.Millisecond }}

	fetcher := NewFetcher(f, Config{MaxConcurrency: 2, Timeout: time.Second})
	records, err := fetcher.FetchAll(context.Background(), "/probability/chance", search.Batches(fsids(10), 1))
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.LessOrEqual(t, f.peak.Load(), int32(2))
}

func TestFetchAll_AbortsOnFirstError(t *testing.T) {
	f := &echoFetcher{
		failOn: "1",
		delay: func(batch []search.Item) time.Duration {
			if batch[0].FSID == "1" {
				return 0
			}
			return time.Second
		},
	}

	fetcher := NewFetcher(f, Config{MaxConcurrency: 4, Timeout: 5 * time.Second})
	start := time.Now()
	records, err := fetcher.FetchAll(context.Background(), "/adaptation/detail", search.Batches(fsids(4), 1))

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "batch 0")
	assert.Contains(t, err.Error(), "boom")
	assert.Less(t, time.Since(start), 900*time.Millisecond, "outstanding batches should be cancelled")
}

func TestFetchAll_BatchTimeout(t *testing.T) {
	f := &echoFetcher{delay: func([]search.Item) time.Duration { return time.Second }}

	fetcher := NewFetcher(f, Config{MaxConcurrency: 1, Timeout: 10 * time.Millisecond})
	_, err := fetcher.FetchAll(context.Background(), "/probability/depth", search.Batches(fsids(2), 1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchAll_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &echoFetcher{}
	fetcher := NewFetcher(f, DefaultConfig())
	_, err := fetcher.FetchAll(ctx, "/probability/depth", search.Batches(fsids(3), 1))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestFetchAll_Empty(t *testing.T) {
	fetcher := NewFetcher(&echoFetcher{}, DefaultConfig())
	records, err := fetcher.FetchAll(context.Background(), "/probability/depth", search.Batches(nil, 10))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewFetcher_Defaults(t *testing.T) {
	fetcher := NewFetcher(&echoFetcher{}, Config{})
	assert.Equal(t, DefaultConfig(), fetcher.config)
}

func TestFetchAll_ConcurrentCallers(t *testing.T) {
	fetcher := NewFetcher(&echoFetcher{}, Config{MaxConcurrency: 3, Timeout: time.Second})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := fetcher.FetchAll(context.Background(), "/probability/count", search.Batches(fsids(7), 2))
			assert.NoError(t, err)
			assert.Len(t, records, 7)
		}()
	}
	wg.Wait()
}
