package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// profileMapping keeps clerk ids exact-match and emails searchable.
const profileMapping = `{
  "mappings": {
    "properties": {
      "id":                {"type": "keyword"},
      "clerk_id":          {"type": "keyword"},
      "email":             {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "subscription_tier": {"type": "keyword"},
      "customer_id":       {"type": "keyword"},
      "created_at":        {"type": "date"},
      "updated_at":        {"type": "date"}
    }
  }
}`

// EnsureProfileIndex creates the profile index when it does not exist yet.
func EnsureProfileIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	if es == nil || index == "" {
		return nil
	}
	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(profileMapping)}.Do(ctx, es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
