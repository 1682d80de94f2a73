package feed

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

// Parser は RSS/Atom フィードを取得・解析し、ベンチマーク対象のURLリストを作ります。
type Parser struct {
	client fetch.Fetcher
}

// NewParser は新しい Parser を生成します。
func NewParser(client fetch.Fetcher) (*Parser, error) {
	if client == nil {
		return nil, fmt.Errorf("feed.NewParser: Fetcher cannot be nil")
	}
	return &Parser{client: client}, nil
}

// FetchAndParse はフィードを取得し、gofeed で解析します。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	// 1. フィードの取得
	body, err := fetch.Bytes(ctx, p.client, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	// 2. RSS/Atom の解析
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("RSSフィードのパース失敗 (URL: %s): %w", feedURL, err)
	}
	return feed, nil
}

// FetchLinks はフィード内の各アイテムのリンクを出現順に返します。
func (p *Parser) FetchLinks(ctx context.Context, feedURL string) ([]string, error) {
	feed, err := p.FetchAndParse(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return GetAllLinks(NewFeedAdapter(feed)), nil
}
