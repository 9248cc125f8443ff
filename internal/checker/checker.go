package checker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/singleflight"

	"linkscout/internal/scraper"
)

// DefaultErrorCodes returns the status set reported as broken when the
// caller does not supply one. Only hard not-found is in it; soft
// failures like 403 or 503 are too site-dependent to flag by default.
func DefaultErrorCodes() mapset.Set[int] {
	return mapset.NewSet(http.StatusNotFound)
}

// CheckResult is the outcome of probing one URL. Status 0 means no
// HTTP status could be determined; Err then carries the transport
// error text. For determinable statuses in the error set, Err carries
// a short "Status <code>" description.
type CheckResult struct {
	Status int
	Err    string
}

// LinkChecker probes URLs with HEAD requests and classifies the final
// status after redirects against a configurable error set. Concurrent
// probes of the same URL are collapsed into a single request.
type LinkChecker struct {
	client     *http.Client
	errorCodes mapset.Set[int]
	flight     singleflight.Group
}

// NewLinkChecker builds a checker around client. A nil client gets the
// default probe timeout; a nil errorCodes gets DefaultErrorCodes.
func NewLinkChecker(client *http.Client, errorCodes mapset.Set[int]) *LinkChecker {
	if client == nil {
		client = &http.Client{Timeout: scraper.DefaultTimeout}
	}
	if errorCodes == nil || errorCodes.Cardinality() == 0 {
		errorCodes = DefaultErrorCodes()
	}
	return &LinkChecker{client: client, errorCodes: errorCodes}
}

// Check probes url and reports the classified outcome. A transport
// failure is not itself a broken-link verdict; it comes back with
// Status 0 so the caller can record it as undetermined.
func (lc *LinkChecker) Check(ctx context.Context, url string) CheckResult {
	v, _, _ := lc.flight.Do(url, func() (interface{}, error) {
		return lc.head(ctx, url), nil
	})
	res := v.(CheckResult)
	log.Debug("checked", "url", url, "status", res.Status, "err", res.Err)
	return res
}

func (lc *LinkChecker) head(ctx context.Context, url string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return CheckResult{Err: err.Error()}
	}
	resp, err := lc.client.Do(req)
	if err != nil {
		return CheckResult{Err: err.Error()}
	}
	resp.Body.Close()

	if lc.errorCodes.Contains(resp.StatusCode) {
		return CheckResult{
			Status: resp.StatusCode,
			Err:    fmt.Sprintf("Status %d", resp.StatusCode),
		}
	}
	return CheckResult{Status: resp.StatusCode}
}

// IsError reports whether res carries a determinable status from the
// configured error set. Undetermined results never count as errors.
func (lc *LinkChecker) IsError(res CheckResult) bool {
	return res.Status != 0 && lc.errorCodes.Contains(res.Status)
}
