// Package feedloader はフィードをファイルかURLから読み込む。
package feedloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ファイルが無い / URLが404
var ErrSourceNotFound = fmt.Errorf("feed source not found: %w", fs.ErrNotExist)

type Loader struct {
	client *resty.Client
}

func New(timeout time.Duration) *Loader {
	return NewWithClient(resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond))
}

func NewWithClient(c *resty.Client) *Loader {
	return &Loader{client: c}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load はsourceの中身を返す。http(s)ならダウンロード、それ以外はファイルパス
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	if isURL(source) {
		return l.download(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("read feed %s: %w", source, err)
	}
	return data, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/x-yaml, application/json, text/plain").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download feed %s: %w", url, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, url)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download feed %s: status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}
