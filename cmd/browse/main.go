// Command browse is a terminal client for the public room listing. Each
// filter edit re-fetches the first page after the debounce delay; "more"
// loads the next page.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/feed"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/utils"
)

const help = `commands:
  city=<name>     filter by city (empty clears)
  budget=<amount> maximum monthly price (empty clears)
  status=<s>      all, libre, en_location or reservation
  more            load the next page
  refresh         reload the first page
  quit`

func main() {
	home, _ := os.UserHomeDir()
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	prefsPath := flag.String("prefs", filepath.Join(home, ".config", "locationapp", "filters.json"), "Where the last filters are kept")
	debounce := flag.Duration("debounce", feed.DefaultDebounce, "Delay between the last filter edit and the fetch")
	flag.Parse()

	logger.Initialize("warn", "text")

	raw, err := feed.LoadFilter(*prefsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring saved filters: %v\n", err)
		raw = domain.RawListingFilter{}
	}

	var printMu sync.Mutex
	var shown int
	session := feed.NewSession(
		feed.NewHTTPFetcher(*apiURL, &http.Client{Timeout: 15 * time.Second}),
		*debounce,
		func(st feed.State) {
			printMu.Lock()
			defer printMu.Unlock()
			shown = render(st, shown)
		},
	)
	defer session.Close()

	if err := session.SetFilter(raw); err != nil {
		fmt.Fprintf(os.Stderr, "saved filters are invalid, starting empty: %v\n", err)
		raw = domain.RawListingFilter{}
		_ = session.SetFilter(raw)
	}

	fmt.Println(help)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, isSet := strings.Cut(line, "=")
		switch {
		case line == "":
		case line == "quit" || line == "q":
			return
		case line == "more":
			if err := session.LoadMore(); errors.Is(err, feed.ErrNoMorePages) {
				fmt.Println("-- no more rooms --")
			}
		case line == "refresh":
			session.Refresh()
		case isSet && (key == "city" || key == "budget" || key == "status"):
			next := raw
			switch key {
			case "city":
				next.City = value
			case "budget":
				next.BudgetMax = value
			case "status":
				next.Status = value
			}
			if err := session.SetFilter(next); err != nil {
				fmt.Printf("invalid filter: %v\n", err)
				continue
			}
			raw = next
			if err := feed.SaveFilter(*prefsPath, raw); err != nil {
				fmt.Fprintf(os.Stderr, "could not save filters: %v\n", err)
			}
		default:
			fmt.Println(help)
		}
	}
}

// render prints the rooms not printed yet and returns the new count. A new
// generation restarts the list.
func render(st feed.State, shown int) int {
	if st.Loading {
		fmt.Printf("loading %s...\n", describe(st.Filter))
		return 0
	}
	if st.Err != nil {
		var mierr *domain.MissingIndexError
		if errors.As(st.Err, &mierr) {
			fmt.Printf("this filter combination is not indexed yet: %s\n", mierr.Hint)
		} else {
			fmt.Printf("error: %v\n", st.Err)
		}
		return shown
	}
	if len(st.Rooms) == 0 {
		fmt.Println("no rooms match these filters")
		return 0
	}
	for _, r := range st.Rooms[min(shown, len(st.Rooms)):] {
		line := fmt.Sprintf("%-24s %-14s %14s/mois  %s", r.Title, r.City, utils.FormatAmount(r.PricePerMonth, r.Currency), r.Status)
		if r.ReleaseDate != nil {
			line += " jusqu'au " + r.ReleaseDate.Format("2006-01-02")
		}
		fmt.Println(line)
	}
	if st.HasMore() {
		fmt.Println("-- type 'more' for the next page --")
	}
	return len(st.Rooms)
}

func describe(f domain.ListingFilter) string {
	parts := []string{}
	if f.City != "" {
		parts = append(parts, "city="+f.City)
	}
	if f.BudgetMax != nil {
		parts = append(parts, fmt.Sprintf("budget<=%d", *f.BudgetMax))
	}
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if len(parts) == 0 {
		return "all rooms"
	}
	return strings.Join(parts, " ")
}
