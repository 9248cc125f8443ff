package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"linkscout/pkg/urlutil"
)

// DefaultTimeout bounds every page fetch and link check.
const DefaultTimeout = 10 * time.Second

// Image is one <img> reference found on a page.
type Image struct {
	URL string `json:"original_url"`
	Alt string `json:"alt_text"`
}

// PageData is everything extracted from one successfully fetched page.
// It is never mutated after Fetch returns it.
type PageData struct {
	URL    string
	Title  string
	Text   string
	Images []Image
	Links  mapset.Set[string]
}

// FetchConfig carries the optional knobs for a Fetcher.
type FetchConfig struct {
	Client  *http.Client  // defaults to a client with DefaultTimeout
	Limiter *rate.Limiter // optional politeness limit on network fetches
}

// Fetcher retrieves page content over HTTP or from the local
// filesystem for file:// URLs. Fetch failures are expected and
// non-fatal: they are logged as warnings and reported as a nil page so
// the caller prunes that branch and moves on.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	extractor *Extractor
}

// NewFetcher builds a Fetcher that discovers links with extractor.
func NewFetcher(extractor *Extractor, cfg FetchConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{client: client, limiter: cfg.Limiter, extractor: extractor}
}

// Fetch retrieves and parses one page. A nil result means the page is
// unusable (missing file, non-200 status, transport error); details
// are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *PageData {
	var content string

	if urlutil.IsFileURL(rawURL) {
		path, ok := urlutil.FilePath(rawURL)
		if !ok {
			log.Warn("unusable file URL", "url", rawURL)
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn("local file not readable", "url", rawURL, "err", err)
			return nil
		}
		// Tolerate files saved with a UTF-8 byte order mark.
		content = strings.TrimPrefix(string(b), "\ufeff")
	} else {
		body, ok := f.get(ctx, rawURL)
		if !ok {
			return nil
		}
		content = body
	}

	return f.parse(rawURL, content)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, bool) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Warn("building request failed", "url", rawURL, "err", err)
		return "", false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("fetch failed", "url", rawURL, "err", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("unexpected status", "url", rawURL, "status", resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reading body failed", "url", rawURL, "err", err)
		return "", false
	}
	return string(body), true
}

func (f *Fetcher) parse(rawURL, content string) *PageData {
	base, err := url.Parse(rawURL)
	if err != nil {
		log.Warn("unparseable page URL", "url", rawURL, "err", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		log.Warn("parsing page failed", "url", rawURL, "err", err)
		return nil
	}

	page := &PageData{
		URL:   rawURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  visibleText(doc),
		Links: f.extractor.Extract(content, base),
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		abs, ok := urlutil.Resolve(base, src)
		if !ok {
			return
		}
		page.Images = append(page.Images, Image{URL: abs, Alt: strings.TrimSpace(s.AttrOr("alt", ""))})
	})

	return page
}

// visibleText joins every text node with single spaces, the same
// flattening a screen reader or search snippet would see.
func visibleText(doc *goquery.Document) string {
	var parts []string
	for _, root := range doc.Nodes {
		for n := range root.Descendants() {
			if n.Type == html.TextNode {
				if t := strings.TrimSpace(n.Data); t != "" {
					parts = append(parts, t)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}
