package pricing

import (
	"bytes"
	"context"
	"fmt"
	"futassist/lib/htmlutil"
	"futassist/lib/restyutil"
	"futassist/lib/textutil"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FutbinSelectors locate the parts of a search result. They follow the
// site's markup and are expected to change with it.
type FutbinSelectors struct {
	// a single result, the other selectors are relative to it
	Row      string `json:"row"`
	Name     string `json:"name"`
	Rating   string `json:"rating"`
	Position string `json:"position"`
	Price    string `json:"price"`
}

func DefaultFutbinSelectors() FutbinSelectors {
	return FutbinSelectors{
		Row:      "table#repTb tr[data-url]",
		Name:     "a",
		Rating:   "span[class*=rating]",
		Position: "div",
		Price:    "td:nth-of-type(6) span",
	}
}

type FutbinOptions struct {
	BaseURL    string
	SearchPath string
	Selectors  FutbinSelectors
	// names are compared by Jaro-Winkler similarity, results below this
	// are not considered
	MinSimilarity float64
	UserAgent     string
	Timeout       time.Duration
}

type FutbinSource struct {
	opts FutbinOptions
	http *resty.Client
}

func NewFutbinSource(opts FutbinOptions) *FutbinSource {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.futbin.com"
	}
	if opts.SearchPath == "" {
		opts.SearchPath = "/players"
	}
	if opts.Selectors == (FutbinSelectors{}) {
		opts.Selectors = DefaultFutbinSelectors()
	}
	if opts.MinSimilarity == 0 {
		opts.MinSimilarity = 0.85
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetTimeout(opts.Timeout)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &FutbinSource{opts: opts, http: client}
}

func (s *FutbinSource) PlayerPrice(ctx context.Context, query PriceQuery) (int, error) {
	ctx, span := tracer.Start(ctx, "FutbinSource:PlayerPrice")
	defer span.End()
	span.SetAttributes(
		attribute.String("name", query.Name),
		attribute.Int("rating", query.Rating),
	)

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("search", query.Name).
		Get(s.opts.SearchPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to search")
		return 0, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search failed")
		return 0, fmt.Errorf("search returned status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return 0, err
	}

	price, err := s.findPrice(doc, query)
	if err != nil {
		slog.WarnContext(ctx, "no price", "player", query.String(), "err", err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	slog.DebugContext(ctx, "found price", "player", query.String(), "price", price)
	return price, nil
}

func anyTextEquals(sel *goquery.Selection, want string) bool {
	found := false
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(htmlutil.CleanText(s.Text()), want) {
			found = true
			return false
		}
		return true
	})
	return found
}

func bestNameSimilarity(sel *goquery.Selection, name string) float64 {
	best := 0.0
	normalized := textutil.NormalizeName(name)
	sel.Each(func(_ int, s *goquery.Selection) {
		text := htmlutil.CleanText(s.Text())
		score := textutil.NameSimilarity(text, name)
		if normalized != "" && strings.Contains(textutil.NormalizeName(text), normalized) {
			score = 1
		}
		if score > best {
			best = score
		}
	})
	return best
}

func (s *FutbinSource) findPrice(doc *goquery.Document, query PriceQuery) (int, error) {
	sel := s.opts.Selectors
	rating := strconv.Itoa(query.Rating)

	var (
		bestRow   *goquery.Selection
		bestScore float64
	)
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		if !anyTextEquals(row.Find(sel.Rating), rating) {
			return
		}
		if query.Position != "" && !anyTextEquals(row.Find(sel.Position), query.Position) {
			return
		}
		score := bestNameSimilarity(row.Find(sel.Name), query.Name)
		if score >= s.opts.MinSimilarity && score > bestScore {
			bestRow = row
			bestScore = score
		}
	})
	if bestRow == nil {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, query.String())
	}

	priceText := htmlutil.CleanText(bestRow.Find(sel.Price).First().Text())
	price, err := ParseCompactPrice(priceText)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrPriceNotFound, query.String(), err.Error())
	}
	return price, nil
}
