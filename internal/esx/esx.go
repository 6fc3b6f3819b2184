// Package esx indexes solves into Elasticsearch for full-text search over
// scrambles and comments. Optional; a nil client turns every operation into
// a no-op.
package esx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/lo"

	"cubedeck/internal/config"
	"cubedeck/internal/model"
)

type Client = es8.Client

// SolveIndex is the index solves are written to.
const SolveIndex = "cubedeck-solves"

func Open(cfg *config.Config) (*Client, func(), error) {
	if strings.TrimSpace(cfg.ES.Addrs) == "" {
		return nil, func() {}, nil
	}
	raw := strings.Split(cfg.ES.Addrs, ",")
	addrs := lo.FilterMap(raw, func(s string, _ int) (string, bool) {
		t := strings.TrimSpace(s)
		return t, t != ""
	})
	es, err := es8.NewClient(es8.Config{Addresses: addrs, Username: cfg.ES.Username, Password: cfg.ES.Password})
	if err != nil {
		return nil, func() {}, err
	}
	return es, func() {}, nil
}

// SolveDoc is the searchable projection of a solve.
type SolveDoc struct {
	ID           int64     `json:"id"`
	Duration     int64     `json:"duration"`
	Scramble     string    `json:"scramble"`
	ScrambleType string    `json:"scramble_type"`
	SessionID    int64     `json:"session_id"`
	PageID       string    `json:"page_id,omitempty"`
	Tags         []string  `json:"tags"`
	Penalty      string    `json:"penalty"`
	Comment      string    `json:"comment,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// DocFromSolve projects a solve for indexing.
func DocFromSolve(s *model.Solve) SolveDoc {
	return SolveDoc{
		ID:           s.ID,
		Duration:     s.Duration,
		Scramble:     s.Scramble,
		ScrambleType: s.ScrambleType,
		SessionID:    s.SessionID,
		PageID:       s.PageID,
		Tags:         s.Tags,
		Penalty:      string(s.Penalty),
		Comment:      s.Comment,
		Timestamp:    s.Timestamp,
	}
}

// IndexSolve writes one solve document. Nil clients no-op.
func IndexSolve(ctx context.Context, es *Client, doc SolveDoc) error {
	if es == nil {
		return nil
	}
	b, _ := json.Marshal(doc)
	res, err := es.Index(SolveIndex, bytes.NewReader(b),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return fmtError(res)
	}
	return nil
}

// DeleteSolve removes one solve document; missing documents are fine.
func DeleteSolve(ctx context.Context, es *Client, id int64) error {
	if es == nil {
		return nil
	}
	res, err := es.Delete(SolveIndex, strconv.FormatInt(id, 10), es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest && res.StatusCode != http.StatusNotFound {
		return fmtError(res)
	}
	return nil
}

// SearchSolves runs a full-text query over scrambles and comments.
func SearchSolves(ctx context.Context, es *Client, query string, from, size int) (map[string]any, error) {
	if es == nil {
		return map[string]any{"hits": []any{}}, nil
	}
	q := map[string]any{"query": map[string]any{"multi_match": map[string]any{"query": query, "fields": []string{"comment^2", "scramble", "tags"}}}}
	b, _ := json.Marshal(q)
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(SolveIndex),
		es.Search.WithBody(bytes.NewReader(b)),
		es.Search.WithFrom(from),
		es.Search.WithSize(size))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmtError(res)
	}
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return out, nil
}

func fmtError(res *esapi.Response) error { return fmt.Errorf("es error: %s", res.String()) }
