package testkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport is an http.RoundTripper answering from a scenario's mock
// steps. Steps are tried in order; the first prefix match wins.
type MockTransport struct {
	mu      sync.Mutex
	steps   []httpMockEntry
	require bool
	calls   []string
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{require: s.IsMockRequired}
	for _, step := range s.NetUtilMockStep {
		if step.IsMock {
			mt.steps = append(mt.steps, httpMockEntry{step: step})
		}
	}
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	url := req.URL.String()
	mt.calls = append(mt.calls, url)

	for i := range mt.steps {
		entry := &mt.steps[i]
		if !urlMatches(url, entry.step.MatchURL) {
			continue
		}
		entry.callCount++
		return buildHTTPResponse(req, entry.step.ReturnData)
	}

	if mt.require {
		return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s", url)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Calls returns every URL the transport saw, matched or not.
func (mt *MockTransport) Calls() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]string(nil), mt.calls...)
}

// Unused lists an error for each step that was never hit.
func (mt *MockTransport) Unused() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step matchUrl=%q was never called", e.step.MatchURL))
		}
	}
	return errs
}

func urlMatches(candidate, pattern string) bool {
	return pattern == "" || strings.HasPrefix(candidate, pattern)
}

func buildHTTPResponse(req *http.Request, rd MockReturnData) (*http.Response, error) {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	body, err := rd.bytes()
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}, nil
}

func (rd MockReturnData) bytes() ([]byte, error) {
	if len(rd.JSON) > 0 {
		return rd.JSON, nil
	}
	if rd.Body == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(rd.Body)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(rd.Body)
		if err != nil {
			return nil, fmt.Errorf("testkit: base64 decode mock body: %w", err)
		}
	}
	return decoded, nil
}
