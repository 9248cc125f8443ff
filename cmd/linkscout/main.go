package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rodaine/table"
	"golang.org/x/time/rate"

	"linkscout/internal/checker"
	"linkscout/internal/export"
	"linkscout/internal/linktree"
	"linkscout/internal/scraper"
)

const (
	defaultSeedURL = "https://example.com"
	defaultDepth   = 1
)

var stdin = bufio.NewReader(os.Stdin)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "tree":
		runTree(ctx, os.Args[2:])
	case "scan":
		runScan(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: linkscout <command> [flags]

Commands:
  tree   crawl a site and save its link tree and unique link listing
  scan   check the links on a list of pages and report the broken ones

Run 'linkscout <command> -h' for the command's flags.
`)
}

func runTree(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	seed := fs.String("url", "", "website URL to crawl (prompted when omitted)")
	depth := fs.Int("depth", -1, "maximum crawl depth (prompted when omitted)")
	jsonOut := fs.String("json", "link_tree.json", "link tree output file")
	csvOut := fs.String("csv", "unique_links.csv", "unique link listing output file")
	rps := fs.Float64("rps", 0, "request rate limit per second, 0 for unlimited")
	verbose := fs.Bool("verbose", false, "log each page as it is fetched")
	fs.Parse(args)

	configureLogging(*verbose)

	if *seed == "" {
		*seed = promptString(
			fmt.Sprintf("Enter the website URL to crawl [default: %s]: ", defaultSeedURL),
			defaultSeedURL)
	}
	if *depth < 0 {
		*depth = promptInt(
			fmt.Sprintf("Enter the maximum depth to crawl [default: %d]: ", defaultDepth),
			defaultDepth)
	}

	fetcher := scraper.NewFetcher(scraper.NewCrawlExtractor(), scraper.FetchConfig{
		Limiter: newLimiter(*rps),
	})
	builder := linktree.NewBuilder(fetcher.Fetch)

	sp := newSpinner(" building link tree...", *verbose)
	start := time.Now()
	root := builder.Build(ctx, *seed, *depth)
	elapsed := time.Since(start)
	sp.Stop()

	if root == nil {
		log.Error("seed page could not be fetched, nothing to save", "url", *seed)
		os.Exit(1)
	}

	if err := export.NewTreeJSONExporter().Export(root, *jsonOut); err != nil {
		os.Exit(1)
	}
	if err := export.NewUniqueLinksCSVExporter().Export(root, *csvOut); err != nil {
		os.Exit(1)
	}

	fmt.Printf("\nLink tree saved to %s\n", *jsonOut)
	fmt.Printf("%d unique links saved to %s\n", len(linktree.Flatten(root)), *csvOut)
	fmt.Printf("Total crawl time: %s\n", elapsed.Round(time.Millisecond))
}

func runScan(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	input := fs.String("input", "", "seed file, .txt or CSV (prompted when omitted)")
	output := fs.String("out", "broken_links_output.csv", "broken link report file")
	codes := fs.String("codes", "", "comma-separated statuses to report as broken (default 404)")
	pageWorkers := fs.Int("workers", checker.DefaultPageWorkers, "concurrent link checks per page")
	seedWorkers := fs.Int("seed-workers", checker.DefaultSeedWorkers, "concurrently scanned pages")
	rps := fs.Float64("rps", 0, "request rate limit per second, 0 for unlimited")
	verbose := fs.Bool("verbose", false, "log each page and each check")
	fs.Parse(args)

	configureLogging(*verbose)

	if *input == "" {
		*input = promptString("Enter the input filename (.txt or CSV with URLs in the first column): ", "")
	}
	if *input == "" {
		log.Error("no input file given")
		os.Exit(1)
	}

	errorCodes, err := parseErrorCodes(*codes)
	if err != nil {
		log.Error("invalid -codes value", "err", err)
		os.Exit(1)
	}

	seeds, err := checker.ReadSeeds(*input)
	if err != nil {
		log.Error("loading the seed list failed", "err", err)
		os.Exit(1)
	}
	if len(seeds) == 0 {
		log.Error("seed list is empty", "file", *input)
		os.Exit(1)
	}

	fmt.Printf("Processing %d URLs concurrently...\n", len(seeds))

	fetcher := scraper.NewFetcher(scraper.NewAuditExtractor(), scraper.FetchConfig{
		Limiter: newLimiter(*rps),
	})
	scanner := checker.NewScanner(fetcher, checker.NewLinkChecker(nil, errorCodes), checker.ScannerOptions{
		PageWorkers: *pageWorkers,
		SeedWorkers: *seedWorkers,
	})

	sp := newSpinner(" checking links...", *verbose)
	start := time.Now()
	records := scanner.Scan(ctx, seeds)
	elapsed := time.Since(start)
	sp.Stop()

	if err := export.NewBrokenLinksCSVExporter().Export(records, *output); err != nil {
		os.Exit(1)
	}

	printScanResults(records)
	fmt.Printf("Report saved to %s\n", *output)
	fmt.Printf("Total scan time: %s\n", elapsed.Round(time.Millisecond))
}

func printScanResults(records []checker.BrokenLink) {
	fmt.Println()
	if len(records) == 0 {
		fmt.Println("No broken links found")
		return
	}

	tbl := table.New("Page", "Broken Link", "Status", "Error")
	prev := ""
	for _, r := range records {
		if r.ParentURL == prev {
			tbl.AddRow("", r.URL, r.Status, r.Err)
		} else {
			tbl.AddRow(r.ParentURL, r.URL, r.Status, r.Err)
			prev = r.ParentURL
		}
	}
	tbl.Print()
	fmt.Printf("%d broken links found\n", len(records))
}

func configureLogging(verbose bool) {
	log.SetReportTimestamp(false)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// newSpinner starts a progress spinner unless verbose logging would
// interleave with it.
func newSpinner(suffix string, verbose bool) *spinner.Spinner {
	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	sp.Suffix = suffix
	if !verbose {
		sp.Start()
	}
	return sp
}

// parseErrorCodes turns a comma-separated status list into a set. An
// empty value selects the default set.
func parseErrorCodes(raw string) (mapset.Set[int], error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return checker.DefaultErrorCodes(), nil
	}

	set := mapset.NewSet[int]()
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a status code", part)
		}
		set.Add(code)
	}
	if set.Cardinality() == 0 {
		return checker.DefaultErrorCodes(), nil
	}
	return set, nil
}

func promptString(prompt, fallback string) string {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return fallback
	}
	if line = strings.TrimSpace(line); line == "" {
		return fallback
	}
	return line
}

func promptInt(prompt string, fallback int) int {
	raw := promptString(prompt, strconv.Itoa(fallback))
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("not a number, using the default", "input", raw, "default", fallback)
		return fallback
	}
	return n
}
