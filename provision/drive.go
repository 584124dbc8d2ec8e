package provision

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultDriveURL = "https://drive.google.com/uc"

var confirmPattern = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)

// DriveFetcher downloads a publicly shared file by its Google Drive id.
// Large files are answered with an HTML warning page first; the fetcher
// follows it once, which is part of the same download.
type DriveFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewDriveFetcher(baseURL string, client *http.Client) *DriveFetcher {
	if baseURL == "" {
		baseURL = DefaultDriveURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &DriveFetcher{BaseURL: baseURL, Client: client}
}

func (f *DriveFetcher) Fetch(ctx context.Context, sourceID string, dst io.Writer, progress ProgressFunc) (int64, error) {
	if sourceID == "" {
		return 0, fmt.Errorf("%w: empty source id", ErrSourceUnavailable)
	}
	target, err := f.downloadURL(sourceID, "")
	if err != nil {
		return 0, err
	}
	resp, err := f.get(ctx, sourceID, target, nil)
	if err != nil {
		return 0, err
	}

	if isHTML(resp) {
		next, cookies, err := f.readConfirmation(resp, sourceID)
		if err != nil {
			return 0, err
		}
		if next == "" {
			return 0, fmt.Errorf("%w: %s answered with a page instead of a file", ErrSourceUnavailable, sourceID)
		}
		resp, err = f.get(ctx, sourceID, next, cookies)
		if err != nil {
			return 0, err
		}
		if isHTML(resp) {
			resp.Body.Close()
			return 0, fmt.Errorf("%w: %s still not downloadable after confirmation", ErrSourceUnavailable, sourceID)
		}
	}
	defer resp.Body.Close()

	pw := &progressWriter{dst: dst, total: resp.ContentLength, fn: progress}
	n, err := io.Copy(pw, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return n, fmt.Errorf("short download: got %d of %d bytes", n, resp.ContentLength)
	}
	return n, nil
}

func (f *DriveFetcher) get(ctx context.Context, sourceID, target string, cookies []*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrSourceUnavailable, sourceID, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("remote returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (f *DriveFetcher) downloadURL(sourceID, confirm string) (string, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid download url %q: %w", f.BaseURL, err)
	}
	q := u.Query()
	q.Set("id", sourceID)
	q.Set("export", "download")
	if confirm != "" {
		q.Set("confirm", confirm)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isHTML(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/html"
}

// readConfirmation drains the warning page and returns the URL that serves
// the file. The download form is tried first, then the download_warning
// cookie, then a confirm token anywhere in the page. An empty URL means the
// page offered no way through.
func (f *DriveFetcher) readConfirmation(resp *http.Response, sourceID string) (string, []*http.Cookie, error) {
	defer resp.Body.Close()
	cookies := resp.Cookies()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, err
	}

	if action, params, ok := parseDownloadForm(body); ok {
		target, err := resp.Request.URL.Parse(action)
		if err != nil {
			return "", nil, fmt.Errorf("invalid download form action %q: %w", action, err)
		}
		q := target.Query()
		for name, values := range params {
			q[name] = values
		}
		if q.Get("id") == "" {
			q.Set("id", sourceID)
		}
		target.RawQuery = q.Encode()
		return target.String(), cookies, nil
	}

	token := ""
	for _, c := range cookies {
		if strings.HasPrefix(c.Name, "download_warning") {
			token = c.Value
			break
		}
	}
	if token == "" {
		if m := confirmPattern.FindSubmatch(body); m != nil {
			token = string(m[1])
		}
	}
	if token == "" {
		return "", cookies, nil
	}
	target, err := f.downloadURL(sourceID, token)
	return target, cookies, err
}

// parseDownloadForm finds the form with id "download-form" and returns its
// action with the name/value pairs of its inputs.
func parseDownloadForm(body []byte) (string, url.Values, bool) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", nil, false
	}
	form := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Form && attr(n, "id") == "download-form"
	})
	if form == nil {
		return "", nil, false
	}

	params := url.Values{}
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Input {
			if name := attr(n, "name"); name != "" {
				params.Add(name, attr(n, "value"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(form)

	action := attr(form, "action")
	if action == "" || len(params) == 0 {
		return "", nil, false
	}
	return action, params, true
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
