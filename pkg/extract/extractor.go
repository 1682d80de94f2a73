package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

// Extractor は、HTMLページからベンチマーク対象にするリンクを収集します。
type Extractor struct {
	fetcher fetch.Fetcher
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher fetch.Fetcher) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Fetcher cannot be nil")
	}
	return &Extractor{
		fetcher: fetcher,
	}, nil
}

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	mainContentSelectors = "article, main, div[role='main'], #main, #content, .post-content, .article-body, .entry-content, .markdown-body, .readme"
	noiseSelectors       = "header, footer, nav, aside, .sidebar, .related-posts, .social-share, .comments, .ad-banner, .advertisement"
)

// FetchAndExtractLinks は指定されたページを取得し、http/https の絶対URLを出現順・重複なしで返します。
// メインコンテンツ領域が見つかった場合はその中のリンクのみを対象にします。
func (e *Extractor) FetchAndExtractLinks(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("URLのパースエラー: %w", err)
	}

	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := fetch.Bytes(ctx, e.fetcher, pageURL)
	if err != nil {
		return nil, err
	}

	// 2. goquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	links := ExtractLinks(doc, base)
	if len(links) == 0 {
		return nil, fmt.Errorf("webページからリンクを抽出できませんでした (URL: %s)", pageURL)
	}
	return links, nil
}

// ExtractLinks は goquery.Document からリンクを収集し、base を基準に絶対URLへ解決します。
func ExtractLinks(doc *goquery.Document, base *url.URL) []string {
	scope := findMainContent(doc)

	seen := make(map[string]struct{})
	var links []string
	scope.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if s.Closest(noiseSelectors).Length() > 0 {
			return
		}
		href, _ := s.Attr("href")
		abs, ok := resolve(base, textUtils.NormalizeText(href))
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

// findMainContent はメインコンテントを取得
func findMainContent(doc *goquery.Document) *goquery.Selection {
	mainContent := doc.Find(mainContentSelectors).First()
	if mainContent.Length() == 0 {
		return doc.Selection
	}
	return mainContent
}

// resolve は href を絶対URLに変換します。http/https 以外とフラグメントのみのリンクは除外します。
func resolve(base *url.URL, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
