package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CitationWatch/internal/config"
	"CitationWatch/internal/domain"
	"CitationWatch/internal/search"
)

const (
	userAgent         = "CitationWatch/1.0"
	defaultRetMax     = 100
	defaultFetchBatch = 100
)

// Client queries the NCBI E-utilities endpoints for PubMed records.
type Client struct {
	baseURL    string
	apiKey     string
	tool       string
	email      string
	retMax     int
	windowDays int
	fetchBatch int
	client     *http.Client
}

var _ search.Index = (*Client)(nil)

// NewClient wires an HTTP client around the configured E-utilities base URL.
func NewClient(cfg config.PubMedConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	retMax := cfg.RetMax
	if retMax <= 0 {
		retMax = defaultRetMax
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		tool:       cfg.Tool,
		email:      cfg.Email,
		retMax:     retMax,
		windowDays: cfg.WindowDays,
		fetchBatch: defaultFetchBatch,
		client:     client,
	}
}

// Name identifies the index inside the registry.
func (c *Client) Name() string {
	return "pubmed"
}

// SearchIDs runs an esearch query and returns matching PMIDs, bounded by the
// configured result cap and publication window.
func (c *Client) SearchIDs(ctx context.Context, query search.Query) ([]string, error) {
	if strings.TrimSpace(query.Expression) == "" {
		return nil, fmt.Errorf("topic %s: empty query expression", query.Topic)
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query.Expression)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(c.retMax))
	if c.windowDays > 0 {
		params.Set("datetype", "pdat")
		params.Set("reldate", strconv.Itoa(c.windowDays))
	}
	c.setEtiquette(params)

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("search topic %s: %w", query.Topic, err)
	}
	defer body.Close()

	var result esearchResult
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode esearch response: %w", err)
	}

	return result.Result.IDList, nil
}

// FetchWorks resolves PMIDs to work metadata, in fixed-size efetch batches.
func (c *Client) FetchWorks(ctx context.Context, ids []string) ([]domain.Work, error) {
	works := make([]domain.Work, 0, len(ids))

	for start := 0; start < len(ids); start += c.fetchBatch {
		end := start + c.fetchBatch
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := c.fetchPage(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		works = append(works, batch...)
	}

	return works, nil
}

func (c *Client) fetchPage(ctx context.Context, ids []string) ([]domain.Work, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	c.setEtiquette(params)

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("fetch %d records: %w", len(ids), err)
	}
	defer body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode efetch response: %w", err)
	}

	works := make([]domain.Work, 0, len(set.Articles))
	for _, article := range set.Articles {
		works = append(works, article.toWork())
	}
	return works, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("pubmed returned %s", resp.Status)
	}

	return resp.Body, nil
}

func (c *Client) setEtiquette(params url.Values) {
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
}

type esearchResult struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID          string      `xml:"MedlineCitation>PMID"`
	Title         string      `xml:"MedlineCitation>Article>ArticleTitle"`
	Journal       string      `xml:"MedlineCitation>Article>Journal>Title"`
	PubDate       pubDate     `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`
	AbstractParts []string    `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	ArticleIDs    []articleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

func (a pubmedArticle) toWork() domain.Work {
	work := domain.Work{
		ID:            strings.TrimSpace(a.PMID),
		Title:         strings.TrimSpace(a.Title),
		Journal:       strings.TrimSpace(a.Journal),
		PublishedDate: a.PubDate.format(),
		Abstract:      joinAbstract(a.AbstractParts),
	}

	for _, id := range a.ArticleIDs {
		if strings.EqualFold(id.IDType, "doi") {
			work.DocID = strings.TrimSpace(id.Value)
			break
		}
	}

	return work
}

func (d pubDate) format() string {
	if trimmed := strings.TrimSpace(d.MedlineDate); trimmed != "" {
		return trimmed
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{d.Year, d.Month, d.Day} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

func joinAbstract(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
