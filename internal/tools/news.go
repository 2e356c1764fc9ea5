package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNewsURL   = "https://newsapi.org"
	defaultNewsLimit = 5
)

// NewsConfig configures the NewsAPI client.
type NewsConfig struct {
	APIKey  string
	BaseURL string
	// Country is used for top headlines when no topic is given.
	Country string
	Limit   int
	Timeout time.Duration
	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

// Article is one headline.
type Article struct {
	Title  string
	Source string
	URL    string
}

// News fetches headlines.
type News struct {
	apiKey  string
	baseURL string
	country string
	limit   int
	http    *http.Client
	log     *slog.Logger
}

// NewNews creates the client. A missing API key is not an error; Headlines
// then returns ErrNotConfigured.
func NewNews(cfg NewsConfig, log *slog.Logger) *News {
	if log == nil {
		log = slog.Default()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultNewsURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	return &News{
		apiKey:  cfg.APIKey,
		baseURL: base,
		country: country,
		limit:   limit,
		http:    newHTTPClient(cfg.HTTPClient, cfg.Timeout),
		log:     log.With("component", "news"),
	}
}

// Configured reports whether an API key is set.
func (n *News) Configured() bool { return n.apiKey != "" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines returns the top headlines, filtered by topic when non-empty.
// An empty result is ErrNotFound.
func (n *News) Headlines(ctx context.Context, topic string) ([]Article, error) {
	if !n.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("apiKey", n.apiKey)
	q.Set("pageSize", strconv.Itoa(n.limit))
	if topic = strings.TrimSpace(topic); topic != "" {
		q.Set("q", topic)
	} else {
		q.Set("country", n.country)
	}

	var out newsAPIResponse
	if err := getJSON(ctx, n.http, n.baseURL+"/v2/top-headlines?"+q.Encode(), &out); err != nil {
		n.log.WarnContext(ctx, "Headline lookup failed", "topic", topic, "error", err)
		return nil, err
	}
	if out.Status != "" && out.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q", ErrUnavailable, out.Status)
	}

	articles := make([]Article, 0, len(out.Articles))
	for _, a := range out.Articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		articles = append(articles, Article{Title: a.Title, Source: a.Source.Name, URL: a.URL})
		if len(articles) == n.limit {
			break
		}
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no headlines for %q", ErrNotFound, topic)
	}
	return articles, nil
}

// FormatHeadlines renders articles as a numbered list.
func FormatHeadlines(articles []Article) string {
	var sb strings.Builder
	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, a.Title)
		if a.Source != "" {
			fmt.Fprintf(&sb, " (%s)", a.Source)
		}
		if a.URL != "" {
			sb.WriteString("\n   " + a.URL)
		}
	}
	return sb.String()
}
