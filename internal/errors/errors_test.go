package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/pkg/scope"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "scope violation",
			code:    "E001",
			wantMsg: "Accessor used outside its provider scope",
			wantCat: CategoryScope,
		},
		{
			name:    "config error",
			code:    "E120",
			wantMsg: "Config parse error",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown page",
			code:    "E201",
			wantMsg: "Unknown page",
			wantCat: CategoryNotFound,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: CategoryInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "page %q not found", "/nope")
	if err.Message != `page "/nope" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestLabError_Error(t *testing.T) {
	err := New("E202")
	if got := err.Error(); got != "E202: Unknown action" {
		t.Errorf("Error() = %q", got)
	}

	err.Wrap(fmt.Errorf("%w \"explode\"", demo.ErrUnknownAction))
	if got := err.Error(); !strings.HasPrefix(got, "E202: Unknown action: ") {
		t.Errorf("Error() with cause = %q", got)
	}
	if !stderrors.Is(err, demo.ErrUnknownAction) {
		t.Error("expected the wrapped error to be reachable")
	}
}

func TestLabError_WithLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memolab.yaml")
	content := "server:\n  host: localhost\n  port: 70000\nlog:\n  level: info\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E122").WithLocation(path, 3, 9)
	if err.Location.Line != 3 || err.Location.Column != 9 {
		t.Errorf("unexpected location %+v", err.Location)
	}
	if len(err.Context) != 5 {
		t.Fatalf("expected 5 context lines, got %d", len(err.Context))
	}
	if err.Context[2] != "  port: 70000" {
		t.Errorf("unexpected middle line %q", err.Context[2])
	}
}

func TestLabError_Builders(t *testing.T) {
	err := New("E001").
		WithDetail("consumer outside provider").
		WithSuggestion("mount the provider").
		WithExample("lab.Dispatch(path, \"mount\", \"\")")

	if err.Detail != "consumer outside provider" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "mount the provider" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Example == "" {
		t.Error("expected example")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E500") != nil {
		t.Error("FromError(nil) should be nil")
	}

	original := New("E201")
	wrapped := fmt.Errorf("lookup: %w", original)
	if FromError(wrapped, "E500") != original {
		t.Error("FromError should return a wrapped LabError as is")
	}

	plain := stderrors.New("boom")
	le := FromError(plain, "E120")
	if le.Code != "E120" || le.Wrapped != plain {
		t.Errorf("unexpected LabError %+v", le)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"scope violation", &scope.ScopeError{Accessor: "CounterContext", Reason: "must be used within a provider"}, "E001", http.StatusConflict},
		{"lab closed", demo.ErrClosed, "E002", http.StatusConflict},
		{"unknown page", fmt.Errorf("%w: /x", demo.ErrUnknownPage), "E201", http.StatusNotFound},
		{"unknown action", demo.ErrUnknownAction, "E202", http.StatusBadRequest},
		{"invalid argument", demo.ErrInvalidArgument, "E203", http.StatusBadRequest},
		{"other", stderrors.New("boom"), "E500", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			le := Classify(tt.err)
			if le.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", le.Code, tt.wantCode)
			}
			if le.HTTPStatus() != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", le.HTTPStatus(), tt.wantStatus)
			}
			if !stderrors.Is(le, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	if nilLoc.String() != "" {
		t.Error("nil location should format as empty")
	}
	if got := (&Location{File: "memolab.json", Line: 4}).String(); got != "memolab.json:4" {
		t.Errorf("String() = %q", got)
	}
	if got := (&Location{File: "memolab.json", Line: 4, Column: 2}).String(); got != "memolab.json:4:2" {
		t.Errorf("String() = %q", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E001").
		WithSuggestion("Mount the consumer under its provider").
		WithExample("memolab run /state/context-api mount increment").
		Wrap(stderrors.New("CounterContext used in \"CounterControls\""))

	formatted := err.Format()
	for _, want := range []string{
		"ERROR E001: Accessor used outside its provider scope",
		"Hint: Mount the consumer under its provider",
		"Example:",
		"Cause: CounterContext used in",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E141")
	err.Location = &Location{File: "memolab.json", Line: 1}
	want := "memolab.json:1: E141: Config file not found"
	if compact := err.FormatCompact(); compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E203").Wrap(stderrors.New("select wants basic or memo"))

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON should produce valid JSON: %v", jerr)
	}
	if decoded["code"] != "E203" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["category"] != string(CategoryValidation) {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["cause"] != "select wants basic or memo" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("run: %w", New("E201")))
	if !strings.Contains(buf.String(), "ERROR E201: Unknown page") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Errorf("GetAllCodes returned %d codes, want %d", len(codes), len(registry))
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" {
			t.Errorf("code %s has no message", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven eight nine ten", 15)
	for _, line := range lines {
		if len(line) > 15 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven eight nine ten" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}
