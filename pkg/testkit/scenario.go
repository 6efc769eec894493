// Package testkit drives HTTP handler tests from JSON scenario files.
//
// A scenario names the request to fire, the expected status, an optional
// expected response body, and the outbound HTTP calls to fake:
//
//	testdata/
//	  yelp_business.json        scenario
//	  yelp_business_res.json    expected response body
//
// Usage:
//
//	func TestScenarios(t *testing.T) {
//	    testkit.RunDir(t, kernel.NewHTTPKernel(deps).Handler(), "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one request/response case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	ResponseFileName string `json:"responseFileName"`
	ExpectedCode     int    `json:"expectedCode"`

	// IsMockRequired turns any outbound call without a matching step into
	// a transport error.
	IsMockRequired bool `json:"isMockRequired"`

	NetUtilMockStep []MockStep `json:"netUtilMockStep"`

	dir string
}

// MockStep fakes one outbound HTTP call. Only "httprequest" is understood.
type MockStep struct {
	Method string `json:"method"`
	IsMock bool   `json:"isMock"`

	// MatchURL is a prefix of the outgoing URL. Empty matches anything.
	MatchURL string `json:"matchUrl"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the faked response. JSON wins over Body when both are
// set; Body is base64 encoded.
type MockReturnData struct {
	StatusCode int             `json:"statusCode"`
	Body       string          `json:"body"`
	JSON       json.RawMessage `json:"json"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	for i, step := range s.NetUtilMockStep {
		if step.Method != "httprequest" {
			return fmt.Errorf("netUtilMockStep[%d]: unsupported method %q", i, step.Method)
		}
	}
	return nil
}

func (s *Scenario) RequestBodyPath() string  { return s.resolve(s.RequestFileName) }
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadAllFromDir loads every *.json file in dir that parses as a scenario.
// Files ending in _req.json or _res.json are bodies, not scenarios.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	paths, err := scenarioFiles(dir)
	if err != nil {
		return nil, []error{err}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func scenarioFiles(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("testkit: glob %q: %w", dir, err)
	}

	var out []string
	for _, p := range entries {
		if isBodyFile(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return out, nil
}

func isBodyFile(path string) bool {
	return strings.HasSuffix(path, "_req.json") || strings.HasSuffix(path, "_res.json")
}
