package page

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/scoring"
)

func TestExtractHTMLPrefersResumeContainer(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<nav>Home</nav>
<div class="job-intro">Job</div><div>
   Sibling text
</div>
<div class="resume-content">
  <h1>张三</h1>
  <p>6年 Python 开发</p>
  <script>var x = 1;</script>
</div>
</body></html>`

	text, err := ExtractHTML(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "张三\n6年 Python 开发" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractHTMLSeparatesBlockElements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		html   string
		expect string
	}{
		{
			name:   "sibling divs",
			html:   `<div class="resume-body"><div>毕业于2015</div><div>3年经验 Python</div></div>`,
			expect: "毕业于2015\n3年经验 Python",
		},
		{
			name:   "list items and line breaks",
			html:   `<div class="resume-body"><ul><li>IoT</li><li>AI</li></ul>北京<br>上海</div>`,
			expect: "IoT\nAI\n北京\n上海",
		},
		{
			name:   "table cells",
			html:   `<div class="resume-body"><table><tr><td>2018</td><td>5年</td></tr></table></div>`,
			expect: "2018\n5年",
		},
		{
			name:   "inline elements stay joined",
			html:   `<div class="resume-body"><span>Py</span><b>thon</b></div>`,
			expect: "Python",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, err := ExtractHTML(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, text)
			}
		})
	}
}

func TestExtractHTMLKeepsYearsApartForScoring(t *testing.T) {
	t.Parallel()

	text, err := ExtractHTML(`<div class="resume-body"><div>毕业于2015</div><div>3年经验 Python</div></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := scoring.ComputeScoreDetails(text, "")
	if result.Years != 3 {
		t.Fatalf("expected 3 years, got %d from %q", result.Years, text)
	}
	if result.Score != 0.093 {
		t.Fatalf("expected score 0.093, got %v", result.Score)
	}
}

func TestExtractHTMLSkipsEmptyContainers(t *testing.T) {
	t.Parallel()

	html := `<div class="resume-body">   </div><div data-hook="resume">data hook resume</div>`

	text, err := ExtractHTML(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "data hook resume" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractHTMLFallsBackToBody(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>body{}</style></head><body><p>Line one</p>
<p>Line two</p></body></html>`

	text, err := ExtractHTML(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Line one\nLine two" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractHTMLNoText(t *testing.T) {
	t.Parallel()

	if _, err := ExtractHTML(`<html><body><script>1</script></body></html>`); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestFetcherExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`<div id="custom">custom block</div><div class="resume-body">resume block</div>`))
		_ = gz.Close()
	}))
	defer server.Close()

	f := New(Options{}, zap.NewNop())
	text, err := f.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "resume block" {
		t.Fatalf("unexpected text: %q", text)
	}

	f = New(Options{Selector: "#custom"}, zap.NewNop())
	text, err = f.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "custom block" {
		t.Fatalf("unexpected text with custom selector: %q", text)
	}
}

func TestFetcherExtractErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Options{}, nil)

	_, err := f.Extract(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}

	for _, raw := range []string{"", "not a url", "ftp://example.com/resume"} {
		if _, err := f.Extract(context.Background(), raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
