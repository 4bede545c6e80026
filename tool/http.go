package tool

import (
	"encoding/base64"
	"fmt"

	"github.com/imroc/req"
)

// PostUrl post a JSON body to url with optional headers, return response body as string
func PostUrl(url string, body interface{}, headers map[string]string) (string, error) {
	h := req.Header{}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := req.Post(url, h, req.BodyJSON(body))
	if err != nil {
		return "", fmt.Errorf("post %s: %w", url, err)
	}

	status := resp.Response().StatusCode
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("post %s: unexpected status %d", url, status)
	}

	return resp.ToString()
}

// GetUrl get url, return response body as string. Unlike PostUrl the
// status is not checked; callers that care inspect the body.
func GetUrl(url string) (string, error) {
	resp, err := req.Get(url)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", url, err)
	}
	return resp.ToString()
}

// Base64Encode encode string to base64
func Base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
