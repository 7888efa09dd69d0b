// Package crawl is the minimal same-origin discovery collaborator named in
// §6's "crawl URL [options] [--test]": it is explicitly an external
// collaborator, not part of the detection engine proper, and only needs to
// hand the orchestrator a {url, selector, submit-selector} per discovered
// candidate input. Link and form extraction follows the teacher's
// pkg/web/extract.go goquery style; same-origin scoping reuses the
// jpillora/go-tld parse already wired in pkg/browser/session_name.go.
package crawl

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	tld "github.com/jpillora/go-tld"
	"github.com/rs/zerolog/log"

	"github.com/ravensec/xssentinel/pkg/browser"
	"github.com/ravensec/xssentinel/pkg/model"
)

// DiscoveredInput is one candidate the orchestrator can be pointed at.
type DiscoveredInput struct {
	URL            string
	Selector       string
	SubmitSelector string
}

// Options bounds the crawl's breadth.
type Options struct {
	MaxDepth int
	MaxPages int
}

const crawlSessionName = "crawl-discovery"

// Crawl performs a breadth-first, same-registrable-domain walk starting at
// startURL, returning one DiscoveredInput per named form field found along
// the way.
func Crawl(sessions *browser.Manager, startURL string, opts Options) ([]DiscoveredInput, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 25
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 2
	}

	session, err := sessions.GetSession(crawlSessionName, model.BrowserChromium, model.SessionOptions{})
	if err != nil {
		return nil, fmt.Errorf("acquire crawl session: %w", err)
	}

	root := registrableDomain(startURL)
	type queued struct {
		url   string
		depth int
	}
	queue := []queued{{startURL, 0}}
	visited := map[string]bool{startURL: true}
	var discovered []DiscoveredInput

	for len(queue) > 0 && len(visited) <= opts.MaxPages {
		item := queue[0]
		queue = queue[1:]

		page, err := session.NewPage()
		if err != nil {
			log.Warn().Err(err).Str("url", item.url).Msg("crawl could not acquire page")
			continue
		}

		if err := page.Navigate(item.url); err != nil {
			log.Debug().Err(err).Str("url", item.url).Msg("crawl navigation failed")
			session.ReleasePage(page)
			continue
		}
		_ = page.Timeout(5 * time.Second).WaitLoad()

		html, err := page.HTML()
		session.ReleasePage(page)
		if err != nil {
			log.Debug().Err(err).Str("url", item.url).Msg("crawl could not read page HTML")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}

		discovered = append(discovered, extractInputs(doc, item.url)...)

		if item.depth >= opts.MaxDepth {
			continue
		}
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			next := resolve(item.url, href)
			if next == "" || visited[next] || registrableDomain(next) != root {
				return
			}
			visited[next] = true
			queue = append(queue, queued{next, item.depth + 1})
		})
	}

	return discovered, nil
}

// extractInputs finds every named form field and pairs it with its form's
// submit control, the same heuristic order the orchestrator's own
// submission fallback chain tries first.
func extractInputs(doc *goquery.Document, pageURL string) []DiscoveredInput {
	var found []DiscoveredInput
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		submitSelector := ""
		form.Find("button[type='submit'], input[type='submit']").Each(func(_ int, s *goquery.Selection) {
			if submitSelector == "" {
				if id, ok := s.Attr("id"); ok && id != "" {
					submitSelector = "#" + id
				} else {
					submitSelector = "button[type='submit'], input[type='submit']"
				}
			}
		})
		form.Find("input[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			if name == "" {
				return
			}
			tag := goquery.NodeName(s)
			found = append(found, DiscoveredInput{
				URL:            pageURL,
				Selector:       fmt.Sprintf("%s[name=%q]", tag, name),
				SubmitSelector: submitSelector,
			})
		})
	})
	return found
}

func resolve(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

func registrableDomain(rawURL string) string {
	parsed, err := tld.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Domain + "." + parsed.TLD
}
