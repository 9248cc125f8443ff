package scraper

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"

	"linkscout/pkg/urlutil"
)

// ScopePolicy decides which resolved candidates an Extractor keeps.
type ScopePolicy int

const (
	// ScopeSameHost keeps local-file URLs and URLs sharing the base
	// host. Used when building a crawl tree.
	ScopeSameHost ScopePolicy = iota
	// ScopeAnyValid keeps local-file URLs and any valid URL, so
	// outbound links stay candidates for health checking.
	ScopeAnyValid
)

// Attribute lists scanned for URL candidates. The crawl list adds the
// data-url/data-link variants and the oneclick handler attribute seen
// on the sites this tool was written against.
var (
	CrawlAttrs = []string{"href", "src", "action", "data-href", "data-src", "data-url", "data-link", "oneclick"}
	AuditAttrs = []string{"href", "src", "action", "data-href", "data-src"}
)

var (
	metaRefreshRe = regexp.MustCompile(`(?i)url=(\S+)`)
	inlineCSSRe   = regexp.MustCompile(`url\(([^)]+)\)`)
	rawURLRe      = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// Extractor discovers candidate URLs in HTML through four independent
// strategies whose results are unioned: a tag-attribute scan, meta
// refresh targets, inline-CSS url(...) references, and a raw-text
// regex fallback for URLs the DOM never surfaces.
type Extractor struct {
	attrs  []string
	policy ScopePolicy
}

// NewCrawlExtractor returns the extractor used for tree building:
// candidates are scope-filtered to local files and the base host.
func NewCrawlExtractor() *Extractor {
	return &Extractor{attrs: CrawlAttrs, policy: ScopeSameHost}
}

// NewAuditExtractor returns the extractor used for link-health scans:
// every valid URL is kept regardless of host.
func NewAuditExtractor() *Extractor {
	return &Extractor{attrs: AuditAttrs, policy: ScopeAnyValid}
}

// Extract returns the deduplicated set of absolute URLs discovered in
// htmlContent, resolved against base and filtered by the extractor's
// scope policy.
func (e *Extractor) Extract(htmlContent string, base *url.URL) mapset.Set[string] {
	links := mapset.NewSet[string]()

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent)); err == nil {
		e.scanAttributes(doc, base, links)
		e.scanMetaRefresh(doc, base, links)
	}
	e.scanInlineCSS(htmlContent, base, links)
	e.scanRawText(htmlContent, base, links)

	return links
}

// scanAttributes visits every element and collects the configured URL
// attributes.
func (e *Extractor) scanAttributes(doc *goquery.Document, base *url.URL, out mapset.Set[string]) {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range e.attrs {
			if val, ok := s.Attr(attr); ok && val != "" {
				e.add(val, base, out)
			}
		}
	})
}

// scanMetaRefresh pulls the url= parameter out of
// <meta http-equiv="refresh" content="5;url=..."> tags.
func (e *Extractor) scanMetaRefresh(doc *goquery.Document, base *url.URL, out mapset.Set[string]) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(s.AttrOr("http-equiv", ""), "refresh") {
			return
		}
		m := metaRefreshRe.FindStringSubmatch(s.AttrOr("content", ""))
		if m == nil {
			return
		}
		e.add(strings.Trim(strings.TrimSpace(m[1]), `'"`), base, out)
	})
}

// scanInlineCSS catches url(...) references in <style> blocks and
// style= attributes that the attribute scan cannot reach.
func (e *Extractor) scanInlineCSS(htmlContent string, base *url.URL, out mapset.Set[string]) {
	for _, m := range inlineCSSRe.FindAllStringSubmatch(htmlContent, -1) {
		e.add(strings.Trim(strings.TrimSpace(m[1]), `'"`), base, out)
	}
}

// scanRawText is the safety net: any http(s) URL-shaped substring in
// the raw markup, including script bodies and text nodes.
func (e *Extractor) scanRawText(htmlContent string, base *url.URL, out mapset.Set[string]) {
	for _, m := range rawURLRe.FindAllString(htmlContent, -1) {
		e.add(m, base, out)
	}
}

// add unescapes HTML entities in the raw candidate, resolves it to an
// absolute URL and applies the scope policy. Entities must decode
// before resolution so &#x2B; reaches the URL as a literal plus sign.
func (e *Extractor) add(candidate string, base *url.URL, out mapset.Set[string]) {
	full, ok := urlutil.Resolve(base, html.UnescapeString(candidate))
	if !ok {
		return
	}

	switch e.policy {
	case ScopeSameHost:
		if urlutil.SameScope(full, base.String()) {
			out.Add(full)
		}
	default:
		if urlutil.IsFileURL(full) || urlutil.IsValid(full) {
			out.Add(full)
		}
	}
}
