package oracle_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/oracle"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain title passes through", "Quarterly Budget Review Report", "Quarterly Budget Review Report"},
		{"double quotes stripped", "\"Quarterly Budget Review Report\"", "Quarterly Budget Review Report"},
		{"single quotes stripped", "'Meeting Notes'", "Meeting Notes"},
		{"surrounding whitespace trimmed", "  Invoice March  ", "Invoice March"},
		{"first non-blank line wins", "\n\nFirst Line\nSecond Line", "First Line"},
		{"quoted first line with trailing explanation", "\"Annual Performance Review Summary\"\n\nThis title captures the essence of the document.", "Annual Performance Review Summary"},
		{"mismatched quotes kept", "\"Half Quoted", "\"Half Quoted"},
		{"empty input", "", ""},
		{"whitespace only", "   \n\t\n", ""},
		{"lone quote kept", "\"", "\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := oracle.Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q): want %q, got %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestFirstLineUsesExcerpt(t *testing.T) {
	got, err := oracle.FirstLine{}.Title(context.Background(), "Project Kickoff Agenda\nMore text", "scan_0042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Project Kickoff Agenda" {
		t.Errorf("title: want %q, got %q", "Project Kickoff Agenda", got)
	}
}

func TestFirstLineFallsBackOnEmptyExcerpt(t *testing.T) {
	for _, excerpt := range []string{"", "   \n\n  "} {
		got, err := oracle.FirstLine{}.Title(context.Background(), excerpt, "scan_0042")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "scan_0042" {
			t.Errorf("excerpt %q: want fallback %q, got %q", excerpt, "scan_0042", got)
		}
	}
}

func TestFallbackIgnoresExcerpt(t *testing.T) {
	got, err := oracle.Fallback{}.Title(context.Background(), "Rich Content Here", "old-name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "old-name" {
		t.Errorf("title: want %q, got %q", "old-name", got)
	}
}

type stubOracle struct {
	title string
	err   error
	calls int
}

func (s *stubOracle) Title(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.title, s.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubOracle{title: "From First"}
	second := &stubOracle{title: "From Second"}
	chain := oracle.Chain{Backends: []oracle.Oracle{first, second}}

	got, err := chain.Title(context.Background(), "some excerpt", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "From First" {
		t.Errorf("title: want %q, got %q", "From First", got)
	}
	if second.calls != 0 {
		t.Errorf("second backend consulted %d times, want 0", second.calls)
	}
}

func TestChainFallsThroughOnError(t *testing.T) {
	first := &stubOracle{err: errors.New("api down")}
	second := &stubOracle{title: "Sgpt Generated Title\n"}
	chain := oracle.Chain{Backends: []oracle.Oracle{first, second}}

	got, err := chain.Title(context.Background(), "some excerpt", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Sgpt Generated Title" {
		t.Errorf("title: want %q, got %q", "Sgpt Generated Title", got)
	}
	if first.calls != 1 {
		t.Errorf("first backend consulted %d times, want 1", first.calls)
	}
}

func TestChainAllFailUsesFallback(t *testing.T) {
	chain := oracle.Chain{Backends: []oracle.Oracle{
		&stubOracle{err: errors.New("api down")},
		&stubOracle{err: errors.New("binary missing")},
	}}

	got, err := chain.Title(context.Background(), "some excerpt", "scan_0042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "scan_0042" {
		t.Errorf("title: want fallback %q, got %q", "scan_0042", got)
	}
}

func TestChainSkipsBackendsOnEmptyExcerpt(t *testing.T) {
	backend := &stubOracle{title: "Should Not Appear"}
	chain := oracle.Chain{Backends: []oracle.Oracle{backend}}

	got, err := chain.Title(context.Background(), "   ", "scan_0042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "scan_0042" {
		t.Errorf("title: want fallback %q, got %q", "scan_0042", got)
	}
	if backend.calls != 0 {
		t.Errorf("backend consulted %d times, want 0", backend.calls)
	}
}

func TestChainCleansBlankResponses(t *testing.T) {
	chain := oracle.Chain{Backends: []oracle.Oracle{
		&stubOracle{title: "  \n\n  "},
		&stubOracle{title: "Usable Title"},
	}}

	got, err := chain.Title(context.Background(), "some excerpt", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Usable Title" {
		t.Errorf("title: want %q, got %q", "Usable Title", got)
	}
}

func TestForPolicyDisabledNeverReadsContent(t *testing.T) {
	o := oracle.ForPolicy(config.LLMDisabled, "gpt-4o-mini")
	got, err := o.Title(context.Background(), "Very Descriptive First Line", "scan_0042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "scan_0042" {
		t.Errorf("title: want fallback %q, got %q", "scan_0042", got)
	}
}

func TestOpenAITitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: want %q, got %q", "Bearer test-key", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request: %v", err)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("parse request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model: want %q, got %q", "gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("messages: want 2, got %d", len(req.Messages))
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"\"Annual Performance Review Summary\"\n\nThis title captures the essence of the document."}}]}`)
	}))
	defer srv.Close()

	client := oracle.NewOpenAI("test-key", "gpt-4o-mini")
	client.URL = srv.URL

	got, err := client.Title(context.Background(), "Annual review for 2024...", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Annual Performance Review Summary" {
		t.Errorf("title: want %q, got %q", "Annual Performance Review Summary", got)
	}
}

func TestOpenAITitleAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	client := oracle.NewOpenAI("test-key", "gpt-4o-mini")
	client.URL = srv.URL

	if _, err := client.Title(context.Background(), "excerpt", "fallback"); err == nil {
		t.Fatal("expected error for API error response, got nil")
	}
}

func TestOpenAITitleBlankContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`)
	}))
	defer srv.Close()

	client := oracle.NewOpenAI("test-key", "gpt-4o-mini")
	client.URL = srv.URL

	if _, err := client.Title(context.Background(), "excerpt", "fallback"); err == nil {
		t.Fatal("expected error for blank title, got nil")
	}
}

func TestSgptTitle(t *testing.T) {
	var gotName string
	var gotArgs []string
	s := &oracle.Sgpt{Runner: func(name string, args ...string) (string, error) {
		gotName = name
		gotArgs = args
		return "Sgpt Generated Title\n", nil
	}}

	got, err := s.Title(context.Background(), "Team meeting notes from Monday", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Sgpt Generated Title" {
		t.Errorf("title: want %q, got %q", "Sgpt Generated Title", got)
	}
	if gotName != "sgpt" {
		t.Errorf("command: want %q, got %q", "sgpt", gotName)
	}
	if len(gotArgs) != 1 {
		t.Fatalf("args: want 1, got %d", len(gotArgs))
	}
}

func TestSgptTitleRunnerFailure(t *testing.T) {
	s := &oracle.Sgpt{Runner: func(string, ...string) (string, error) {
		return "", errors.New("exit status 1")
	}}

	if _, err := s.Title(context.Background(), "excerpt", "fallback"); err == nil {
		t.Fatal("expected error when sgpt fails, got nil")
	}
}
