package checker

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"linkscout/internal/scraper"
)

const (
	// DefaultPageWorkers bounds concurrent link probes within one page.
	DefaultPageWorkers = 20
	// DefaultSeedWorkers bounds concurrently scanned seed pages.
	DefaultSeedWorkers = 10
)

// BrokenLink is one report row: a link that classified as broken and
// the page it was found on. A page that is itself broken appears as
// its own parent.
type BrokenLink struct {
	ParentURL string `csv:"parent_url"`
	URL       string `csv:"broken_link"`
	Status    int    `csv:"status"`
	Err       string `csv:"error"`
}

// ScannerOptions tunes the scanner's worker pools. Zero values fall
// back to the package defaults.
type ScannerOptions struct {
	PageWorkers int
	SeedWorkers int
}

// Scanner audits pages for broken outbound links. Each seed page is
// fetched once, every discovered link is probed, and only failures
// are reported.
type Scanner struct {
	fetcher     *scraper.Fetcher
	checker     *LinkChecker
	pageWorkers int
	seedWorkers int
}

// NewScanner wires a fetcher and a checker into a scanner.
func NewScanner(fetcher *scraper.Fetcher, checker *LinkChecker, opts ScannerOptions) *Scanner {
	if opts.PageWorkers <= 0 {
		opts.PageWorkers = DefaultPageWorkers
	}
	if opts.SeedWorkers <= 0 {
		opts.SeedWorkers = DefaultSeedWorkers
	}
	return &Scanner{
		fetcher:     fetcher,
		checker:     checker,
		pageWorkers: opts.PageWorkers,
		seedWorkers: opts.SeedWorkers,
	}
}

// ScanPage fetches one page and probes the page URL plus every link
// found on it. An unfetchable page yields no records. Record order
// follows probe completion, not link order.
func (s *Scanner) ScanPage(ctx context.Context, pageURL string) []BrokenLink {
	log.Info("processing", "url", pageURL)

	page := s.fetcher.Fetch(ctx, pageURL)
	if page == nil {
		return nil
	}

	var records []BrokenLink

	// The page can be its own broken link: the GET used for scraping
	// and the HEAD used for checking may disagree.
	if res := s.checker.Check(ctx, pageURL); s.checker.IsError(res) {
		msg := res.Err
		if msg == "" {
			msg = "Broken main page"
		}
		records = append(records, BrokenLink{
			ParentURL: pageURL,
			URL:       pageURL,
			Status:    res.Status,
			Err:       msg,
		})
	}

	links := page.Links.ToSlice()
	log.Info("checking links", "url", pageURL, "count", len(links))

	results := make(chan BrokenLink, len(links))
	sem := make(chan struct{}, s.pageWorkers)
	var wg sync.WaitGroup

	for _, link := range links {
		wg.Add(1)
		sem <- struct{}{}
		go func(link string) {
			defer wg.Done()
			defer func() { <-sem }()

			if res := s.checker.Check(ctx, link); s.checker.IsError(res) {
				results <- BrokenLink{
					ParentURL: pageURL,
					URL:       link,
					Status:    res.Status,
					Err:       res.Err,
				}
			}
		}(link)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for rec := range results {
		records = append(records, rec)
	}
	return records
}

// Scan audits every seed page with a bounded pool and returns the
// combined records. The slice is only appended to by this goroutine;
// workers hand their batches over a channel.
func (s *Scanner) Scan(ctx context.Context, seeds []string) []BrokenLink {
	results := make(chan []BrokenLink, len(seeds))
	sem := make(chan struct{}, s.seedWorkers)
	var wg sync.WaitGroup

	for _, seed := range seeds {
		wg.Add(1)
		sem <- struct{}{}
		go func(seed string) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- s.ScanPage(ctx, seed)
		}(seed)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []BrokenLink
	for batch := range results {
		all = append(all, batch...)
	}
	return all
}
