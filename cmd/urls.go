package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	textUtils "github.com/shouni/go-utils/text"
	"github.com/spf13/cobra"

	"github.com/shouni/go-fetch-bench/pkg/extract"
	"github.com/shouni/go-fetch-bench/pkg/feed"
	"github.com/shouni/go-fetch-bench/pkg/httpclient"
)

// defaultURLs は比較に使う標準のURLリストです。
var defaultURLs = []string{
	"https://www.rust-lang.org",
	"https://crates.io",
	"https://docs.rs",
	"https://github.com",
	"https://www.mozilla.org",
	"https://www.wikipedia.org",
	"https://www.stackoverflow.com",
	"https://news.ycombinator.com",
	"https://www.reddit.com",
	"https://www.nytimes.com",
	"https://www.bbc.com",
	"https://www.cnn.com",
	"https://www.theverge.com",
	"https://arstechnica.com",
	"https://www.medium.com",
	"https://www.linkedin.com",
	"https://www.apple.com",
	"https://www.microsoft.com",
	"https://www.amazon.com",
	"https://www.google.com",
}

// urlSource はベンチマーク対象URLの取得元を表すフラグです。優先順位は feed > page > file > urls > 標準リストです。
type urlSource struct {
	list    string // --urls カンマ区切りのURLリスト
	file    string // --file 1行1URLのファイル ("-" は標準入力)
	feedURL string // --feed RSS/Atom フィードのURL
	pageURL string // --page リンクを収集するHTMLページのURL
	limit   int    // --limit 先頭から使うURL数 (0 = すべて)
}

var sourceFlags urlSource

// addURLFlags はURL取得元のフラグをコマンドに追加します。
func addURLFlags(cmd *cobra.Command, src *urlSource) {
	cmd.Flags().StringVarP(&src.list, "urls", "u", "", "対象のカンマ区切りURLリスト (例: url1,url2,url3)")
	cmd.Flags().StringVarP(&src.file, "file", "f", "", "1行に1URLを記述したファイル (\"-\" で標準入力)")
	cmd.Flags().StringVar(&src.feedURL, "feed", "", "アイテムのリンクを対象にする RSS/Atom フィードのURL")
	cmd.Flags().StringVar(&src.pageURL, "page", "", "リンクを収集して対象にするHTMLページのURL")
	cmd.Flags().IntVar(&src.limit, "limit", 0, "先頭から使用するURLの最大数 (0 = すべて)")
}

// load はフラグに従ってURLリストを作成します。フィードとページの取得は計測の対象外です。
func (s *urlSource) load(ctx context.Context, stdin io.Reader) ([]string, error) {
	urls, err := s.collect(ctx, stdin)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("処理対象のURLが一つも指定されていません")
	}
	if s.limit > 0 && len(urls) > s.limit {
		urls = urls[:s.limit]
	}
	return urls, nil
}

func (s *urlSource) collect(ctx context.Context, stdin io.Reader) ([]string, error) {
	switch {
	case s.feedURL != "":
		feedURL, err := ensureScheme(s.feedURL)
		if err != nil {
			return nil, err
		}
		parser, err := feed.NewParser(provisionClient())
		if err != nil {
			return nil, err
		}
		log.Printf("フィードからURLを取得します: %s", feedURL)
		return withTimeout(ctx, func(ctx context.Context) ([]string, error) {
			return parser.FetchLinks(ctx, feedURL)
		})

	case s.pageURL != "":
		pageURL, err := ensureScheme(s.pageURL)
		if err != nil {
			return nil, err
		}
		extractor, err := extract.NewExtractor(provisionClient())
		if err != nil {
			return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
		}
		log.Printf("ページからリンクを収集します: %s", pageURL)
		return withTimeout(ctx, func(ctx context.Context) ([]string, error) {
			return extractor.FetchAndExtractLinks(ctx, pageURL)
		})

	case s.file == "-":
		log.Println("標準入力からURLを読み込みます (Ctrl+DまたはEOFで終了)...")
		return parseURLLines(stdin)

	case s.file != "":
		f, err := os.Open(s.file)
		if err != nil {
			return nil, fmt.Errorf("URLファイルを開けませんでした: %w", err)
		}
		defer f.Close()
		return parseURLLines(f)

	case s.list != "":
		return parseURLLines(strings.NewReader(strings.ReplaceAll(s.list, ",", "\n")))

	default:
		return append([]string(nil), defaultURLs...), nil
	}
}

// provisionClient はURLリストの取得に使うクライアントを返します。ベンチマーク用のバックエンド設定とは独立です。
func provisionClient() *httpclient.Client {
	timeout := time.Duration(Flags.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = httpclient.DefaultHTTPTimeout
	}
	return httpclient.New(timeout)
}

func withTimeout(ctx context.Context, fn func(ctx context.Context) ([]string, error)) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOverallTimeout)
	defer cancel()
	return fn(ctx)
}

// parseURLLines は1行1URLのテキストを読み込みます。空行と # で始まる行は無視します。
func parseURLLines(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(textUtils.NormalizeText(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := ensureScheme(line)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("URLリストの読み取りエラー: %w", err)
	}
	return urls, nil
}

// ensureScheme は、URLのスキームが存在しない場合に https:// を補完します。
func ensureScheme(rawURL string) (string, error) {
	// 1. まず現在のURLをパース
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}

	// 2. スキームが既に存在する場合のチェック
	if parsedURL.Scheme != "" {
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", rawURL)
		}
		return rawURL, nil
	}

	// 3. スキームがない場合、HTTPSをデフォルトとして付与
	return "https://" + rawURL, nil
}
