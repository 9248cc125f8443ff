package linktree

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"

	"linkscout/internal/scraper"
	"linkscout/pkg/urlutil"
)

// Node is one fetched page in a crawl tree. Links holds the sorted
// snapshot of every URL discovered on the page; Children holds the
// in-scope pages actually traversed, in snapshot order. Children grow
// only while the node's subtree is being walked; the finished tree is
// never mutated.
type Node struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Links    []string `json:"links"`
	Children []*Node  `json:"children"`
}

// FetchFunc retrieves one page; a nil result prunes that branch.
type FetchFunc func(ctx context.Context, url string) *scraper.PageData

// Builder performs a depth-bounded traversal from a seed URL. The
// visited set guarantees at most one fetch per URL, which is what
// keeps cyclic link graphs finite; create a fresh Builder per run.
type Builder struct {
	fetch   FetchFunc
	visited mapset.Set[string]
}

// NewBuilder returns a Builder that retrieves pages through fetch.
func NewBuilder(fetch FetchFunc) *Builder {
	return &Builder{fetch: fetch, visited: mapset.NewSet[string]()}
}

type frame struct {
	url    string
	depth  int // remaining depth below this page
	parent *Node
}

// Build crawls from seed down to maxDepth levels and returns the root
// node, or nil when the seed page itself is unusable. The traversal
// runs on an explicit work stack so a large depth setting cannot
// exhaust the call stack.
func (b *Builder) Build(ctx context.Context, seed string, maxDepth int) *Node {
	baseHost := urlutil.Host(seed)

	var root *Node
	stack := []frame{{url: seed, depth: maxDepth}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Add is the atomic check-and-insert: false means this URL was
		// already fetched (or already failed) during this run.
		if !b.visited.Add(f.url) {
			continue
		}

		log.Info("scraping", "url", f.url)
		page := b.fetch(ctx, f.url)
		if page == nil {
			continue
		}

		node := &Node{
			URL:      page.URL,
			Title:    page.Title,
			Links:    sortedLinks(page.Links),
			Children: []*Node{},
		}
		if f.parent == nil {
			root = node
		} else {
			f.parent.Children = append(f.parent.Children, node)
		}

		if f.depth <= 0 {
			continue
		}
		// Push in reverse so children attach in snapshot order.
		for i := len(node.Links) - 1; i >= 0; i-- {
			link := node.Links[i]
			if !inScope(f.url, link, baseHost) {
				continue
			}
			stack = append(stack, frame{url: link, depth: f.depth - 1, parent: node})
		}
	}

	return root
}

// inScope applies the asymmetric traversal boundary: a local-file page
// follows only local-file links, a network page follows only links on
// the traversal's base host.
func inScope(pageURL, link, baseHost string) bool {
	if urlutil.IsFileURL(pageURL) {
		return urlutil.IsFileURL(link)
	}
	return baseHost != "" && urlutil.Host(link) == baseHost
}

func sortedLinks(links mapset.Set[string]) []string {
	out := links.ToSlice()
	sort.Strings(out)
	return out
}

// UniqueLink is one flattened (URL, title) pair from a crawl tree.
type UniqueLink struct {
	URL   string `csv:"URL"`
	Title string `csv:"Title"`
}

// Flatten walks the tree depth-first and collects each URL once, with
// the title it was first seen under.
func Flatten(root *Node) []UniqueLink {
	if root == nil {
		return nil
	}

	seen := mapset.NewSet[string]()
	out := []UniqueLink{}

	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.URL != "" && seen.Add(n.URL) {
			out = append(out, UniqueLink{URL: n.URL, Title: n.Title})
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
