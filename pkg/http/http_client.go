package http

import (
	"time"

	"github.com/go-resty/resty/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/11/6 20:39
 * @file: http_client.go
 * @description: http client
 */

const defaultClientTimeout = 10 * time.Second

// NewClient returns a resty client for outbound calls to baseURL.
func NewClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "agileboard")
}
