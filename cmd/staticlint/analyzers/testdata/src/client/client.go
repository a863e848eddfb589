package client

import (
	"net/http"
	"net/url"
)

func fetch(c *http.Client) error {
	resp, err := http.Get("http://example.com") // want "http.Get запрещен, используйте api.Client"
	if err != nil {
		return err
	}
	resp.Body.Close()

	_, _ = http.Post("http://example.com", "text/plain", nil) // want "http.Post запрещен, используйте api.Client"
	_, _ = http.PostForm("http://example.com", url.Values{})  // want "http.PostForm запрещен, используйте api.Client"
	_, _ = http.Head("http://example.com")                    // want "http.Head запрещен, используйте api.Client"
	_, _ = http.DefaultClient.Do(&http.Request{})             // want "http.DefaultClient запрещен, используйте api.Client"
	_, _ = c.Get("http://example.com")
	return nil
}
