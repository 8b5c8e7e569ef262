// Package scrape extracts best-effort contact and speciality text from a
// provider's practice website.
package scrape

import (
	"context"
	"html"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
)

// Scraper fetches a practice website and returns whatever contact fields
// could be guessed from it. A nil Observation with nil error means nothing
// usable was found.
type Scraper interface {
	Scrape(ctx context.Context, siteURL string) (*model.Observation, error)
}

// SiteScraper implements Scraper with a plain net/http fetch and heuristic
// text extraction. No headless browser, no API calls.
type SiteScraper struct {
	client  *http.Client
	maxBody int64
	caser   cases.Caser
}

// specialityKeywords are matched case-insensitively against page text; the
// first hit wins.
var specialityKeywords = []string{
	"cardiology", "dermatology", "neurology", "pediatrics",
	"family medicine", "internal medicine", "orthopedics",
	"ophthalmology", "endocrinology", "gastroenterology",
}

// streetMarkers flag a line as address-ish.
var streetMarkers = []string{"Street", "St", "Ave", "Avenue", "Road", "Rd", "Blvd", "Drive", "Dr"}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)\b.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	phoneRe  = regexp.MustCompile(`\+?\d[\d\-\s().]{7,}`)
)

// NewSiteScraper creates a SiteScraper from config, applying defaults for
// any unset values.
func NewSiteScraper(cfg config.ScrapeConfig) *SiteScraper {
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 10
	}
	if cfg.MaxBodyKB <= 0 {
		cfg.MaxBodyKB = 512
	}
	return &SiteScraper{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxBody: int64(cfg.MaxBodyKB) * 1024,
		caser:   cases.Title(language.English),
	}
}

// Scrape fetches the page and guesses phone, address, and speciality from
// its visible text.
func (s *SiteScraper) Scrape(ctx context.Context, siteURL string) (*model.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: build request for %s", siteURL)
	}
	req.Header.Set("User-Agent", "provider-directory/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", siteURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scrape: fetch %s: unexpected status %d", siteURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body of %s", siteURL)
	}

	text := htmlToText(string(body))
	obs := &model.Observation{
		Phone:      s.guessPhone(text),
		Address:    s.guessAddress(text),
		Speciality: s.guessSpeciality(text),
	}

	if obs.Empty() {
		zap.L().Debug("scrape: nothing usable extracted", zap.String("url", siteURL))
		return nil, nil
	}
	return obs, nil
}

// htmlToText strips scripts, styles, and tags, unescapes entities, and
// normalizes whitespace into newline-separated lines.
func htmlToText(raw string) string {
	raw = scriptRe.ReplaceAllString(raw, " ")
	raw = tagRe.ReplaceAllString(raw, "\n")
	raw = html.UnescapeString(raw)

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func (s *SiteScraper) guessPhone(text string) string {
	return strings.TrimSpace(phoneRe.FindString(text))
}

// guessAddress picks the first sufficiently long line containing a street
// marker.
func (s *SiteScraper) guessAddress(text string) string {
	for _, line := range strings.Split(text, "\n") {
		for _, marker := range streetMarkers {
			if strings.Contains(line, marker) {
				if cleaned := strings.TrimSpace(line); len(cleaned) > 10 {
					return cleaned
				}
				break
			}
		}
	}
	return ""
}

func (s *SiteScraper) guessSpeciality(text string) string {
	lower := strings.ToLower(text)
	for _, keyword := range specialityKeywords {
		if strings.Contains(lower, keyword) {
			return s.caser.String(keyword)
		}
	}
	return ""
}
