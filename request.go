package statuspage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// errorBodyLimit caps how much of a non-2xx body is kept on a StatusError.
const errorBodyLimit = 4096

// getJSON requests endpoint and decodes the body into v after validating it
// against def.
func (c *Client) getJSON(ctx context.Context, endpoint, def string, v any) error {
	url := c.baseURL + endpoint

	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if err := Unmarshal(def, body, v); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = url
		}
		return err
	}

	return nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	l := c.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    url,
	})
	l.Debug("sending request")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: url, Err: err}
	}
	defer res.Body.Close()

	l.WithFields(logrus.Fields{
		"status":   res.StatusCode,
		"duration": time.Since(start),
	}).Debug("received response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		return nil, &StatusError{
			Method:     req.Method,
			URL:        url,
			StatusCode: res.StatusCode,
			Body:       snippet,
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: url, Err: err}
	}

	return body, nil
}
