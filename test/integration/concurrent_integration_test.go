//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/adapters/storage/memory"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
)

// post sends a JSON body and decodes the envelope. It is safe to call from
// any goroutine; failures surface as a zero status.
func post(client *http.Client, url, body string) (int, dto.Response[json.RawMessage]) {
	var env dto.Response[json.RawMessage]

	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		return 0, env
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return 0, env
	}

	return resp.StatusCode, env
}

// TestConcurrent_Creates verifies that parallel creates each get their own ID
// and all land in storage.
func TestConcurrent_Creates(t *testing.T) {
	srv, err := startService(serviceOptions{})
	require.NoError(t, err)
	defer srv.Close()

	const numGoroutines = 50

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created atomic.Int32
		ids     = make(map[int]struct{}, numGoroutines)
	)

	for i := range numGoroutines {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			status, env := post(srv.Client(), srv.URL+"/api/v1/quotes",
				fmt.Sprintf(`{"author":"Author %d","content":"Concurrent quote %d","category":"load"}`, n, n))
			if status != http.StatusCreated || env.Data == nil {
				return
			}

			var q app.QuoteResponse
			if json.Unmarshal(*env.Data, &q) != nil {
				return
			}

			created.Add(1)

			mu.Lock()
			ids[q.QuoteID] = struct{}{}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(numGoroutines), created.Load(), "all creates should succeed")
	assert.Len(t, ids, numGoroutines, "every quote should get a distinct ID")

	resp, err := srv.Client().Get(srv.URL + "/api/v1/quotes?category=load&pageSize=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env dto.Response[app.QuotePage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(numGoroutines), env.Data.TotalCount)
	assert.Equal(t, numGoroutines, env.Data.TotalPages)
}

// TestConcurrent_DuplicateCreates verifies that only one of many identical
// creates racing each other succeeds.
func TestConcurrent_DuplicateCreates(t *testing.T) {
	srv, err := startService(serviceOptions{})
	require.NoError(t, err)
	defer srv.Close()

	const numGoroutines = 20

	var (
		wg        sync.WaitGroup
		created   atomic.Int32
		conflicts atomic.Int32
	)

	for range numGoroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			status, env := post(srv.Client(), srv.URL+"/api/v1/quotes",
				`{"author":"Heraclitus","content":"The only constant is change."}`)

			switch status {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				if len(env.Errors) > 0 && env.Errors[0].Code == result.CodeConflict {
					conflicts.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(numGoroutines-1), conflicts.Load())
}

// TestConcurrent_ReadsDuringWrites verifies that listing keeps answering while
// quotes are being added, and that every write is visible afterwards.
func TestConcurrent_ReadsDuringWrites(t *testing.T) {
	srv, err := startService(serviceOptions{})
	require.NoError(t, err)
	defer srv.Close()

	const writers, readers = 10, 10

	var (
		wg      sync.WaitGroup
		written atomic.Int32
		read    atomic.Int32
	)

	for i := range writers {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			status, _ := post(srv.Client(), srv.URL+"/api/v1/quotes",
				fmt.Sprintf(`{"author":"Writer %d","content":"Written while reading %d","category":"mixed"}`, n, n))
			if status == http.StatusCreated {
				written.Add(1)
			}
		}(i)
	}

	for range readers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := srv.Client().Get(srv.URL + "/api/v1/quotes?category=mixed&pageSize=100")
			if err != nil {
				return
			}
			defer resp.Body.Close()

			var env dto.Response[app.QuotePage]
			if json.NewDecoder(resp.Body).Decode(&env) == nil && resp.StatusCode == http.StatusOK && env.Data != nil {
				read.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(writers), written.Load())
	assert.Equal(t, int32(readers), read.Load())

	resp, err := srv.Client().Get(srv.URL + "/api/v1/quotes?category=mixed&pageSize=100")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env dto.Response[app.QuotePage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NotNil(t, env.Data)
	assert.Len(t, env.Data.Items, writers)
}

// stalledQuotes blocks every lookup until the request deadline passes.
type stalledQuotes struct {
	*memory.QuoteRepository
}

func (stalledQuotes) GetByID(ctx context.Context, _ int) (*domain.Quote, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// TestConcurrent_RequestTimeout verifies that requests stuck in storage are
// cut off at the request deadline and answered as unavailable.
func TestConcurrent_RequestTimeout(t *testing.T) {
	store := memory.NewStore()

	srv, err := startService(serviceOptions{
		timeout: 100 * time.Millisecond,
		quotes:  stalledQuotes{store.Quotes()},
		tx:      store,
	})
	require.NoError(t, err)
	defer srv.Close()

	const numGoroutines = 10

	var (
		wg          sync.WaitGroup
		unavailable atomic.Int32
	)

	start := time.Now()

	for range numGoroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := srv.Client().Get(srv.URL + "/api/v1/quotes/1")
			if err != nil {
				return
			}
			defer resp.Body.Close()

			var env dto.Response[json.RawMessage]
			if json.NewDecoder(resp.Body).Decode(&env) != nil {
				return
			}

			if resp.StatusCode == http.StatusServiceUnavailable && len(env.Errors) > 0 && env.Errors[0].Code == result.CodeDBUnavailable {
				unavailable.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(numGoroutines), unavailable.Load())
	assert.Less(t, time.Since(start), 5*time.Second, "requests should not outlive their deadline")
}
