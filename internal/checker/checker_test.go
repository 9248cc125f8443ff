package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestCheckHealthyLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	lc := NewLinkChecker(srv.Client(), nil)
	res := lc.Check(context.Background(), srv.URL)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, res.Err)
	assert.False(t, lc.IsError(res))
}

func TestCheckNotFoundLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	lc := NewLinkChecker(srv.Client(), nil)
	res := lc.Check(context.Background(), srv.URL)

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Status 404", res.Err)
	assert.True(t, lc.IsError(res))
}

func TestCheckTransportFailureIsUndetermined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	lc := NewLinkChecker(nil, nil)
	res := lc.Check(context.Background(), deadURL)

	assert.Zero(t, res.Status)
	assert.NotEmpty(t, res.Err)
	assert.False(t, lc.IsError(res), "an unreachable link must not classify as broken")
}

func TestCheckClassifiesFinalStatusAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gone", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	lc := NewLinkChecker(srv.Client(), nil)
	res := lc.Check(context.Background(), srv.URL+"/moved")

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.True(t, lc.IsError(res))
}

func TestCheckCustomErrorCodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	lc := NewLinkChecker(srv.Client(), mapset.NewSet(http.StatusForbidden))

	forbidden := lc.Check(context.Background(), srv.URL+"/forbidden")
	assert.True(t, lc.IsError(forbidden))
	assert.Equal(t, "Status 403", forbidden.Err)

	// 404 is no longer in the set once the caller overrides it.
	missing := lc.Check(context.Background(), srv.URL+"/missing")
	assert.False(t, lc.IsError(missing))
	assert.Empty(t, missing.Err)
}

func TestCheckCollapsesConcurrentProbes(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	firstHit := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		once.Do(func() { close(firstHit) })
		<-release
	}))
	defer srv.Close()

	lc := NewLinkChecker(srv.Client(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := lc.Check(context.Background(), srv.URL)
			assert.Equal(t, http.StatusOK, res.Status)
		}()
	}

	<-firstHit
	time.Sleep(50 * time.Millisecond) // let the rest join the in-flight probe
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDefaultErrorCodes(t *testing.T) {
	codes := DefaultErrorCodes()
	assert.True(t, codes.Contains(http.StatusNotFound))
	assert.Equal(t, 1, codes.Cardinality())
}
