package richtext

import (
	"reflect"
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no markup passes through", "A\n\nB", "A\n\nB"},
		{"inline tags dropped", "<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"paragraphs become lines", "<p>one</p><p>two</p>", "one\ntwo"},
		{"line break", "first<br>second", "first\nsecond"},
		{"list items get bullets", "<ul><li>a</li><li>b</li></ul>", "• a\n• b"},
		{"entities decoded", "Fish &amp; Chips", "Fish & Chips"},
		{"script removed", "<p>safe</p><script>alert(1)</script>", "safe"},
		{"heading and text", "<h1>Title</h1>Body", "Title\nBody"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	got := Lines("<p>one</p>\n<p> </p><div>two</div>")
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestSanitize(t *testing.T) {
	in := `<p onclick="steal()">Hi <a href="javascript:alert(1)">x</a> <b>there</b></p><script>bad()</script>`
	got := Sanitize(in)

	for _, bad := range []string{"onclick", "javascript:", "<script", "bad()"} {
		if strings.Contains(got, bad) {
			t.Errorf("Sanitize() kept %q: %s", bad, got)
		}
	}
	if !strings.Contains(got, "<b>there</b>") {
		t.Errorf("Sanitize() dropped formatting: %s", got)
	}
}

func TestSanitizeDocumentTagsAndURLs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		bad  string
		keep string
	}{
		{"meta refresh", `<p>a</p><meta http-equiv="refresh" content="0;url=https://evil.example">`, "http-equiv", "<p>a</p>"},
		{"base href", `<p>b</p><base href="https://evil.example/">`, "<base", "<p>b</p>"},
		{"stylesheet link", `<p>c</p><link rel="stylesheet" href="https://evil.example/x.css">`, "<link", "<p>c</p>"},
		{"data href", `<a href="data:text/html;base64,PHNjcmlwdD4=">x</a>`, "data:", ">x</a>"},
		{"split scheme", "<a href=\"java\tscript:alert(1)\">y</a>", "script:", ">y</a>"},
		{"vbscript", `<a href="VBScript:msgbox(1)">z</a>`, "msgbox", ">z</a>"},
		{"svg data image", `<img src="data:image/svg+xml;base64,PHN2Zz4=">`, "data:", "<img"},
		{"form action", `<form action="javascript:go()"><b>f</b></form>`, "go()", "<b>f</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if strings.Contains(got, tt.bad) {
				t.Errorf("Sanitize() kept %q: %s", tt.bad, got)
			}
			if !strings.Contains(got, tt.keep) {
				t.Errorf("Sanitize() dropped %q: %s", tt.keep, got)
			}
		})
	}

	img := `<img src="data:image/png;base64,iVBORw0KGgo=">`
	if got := Sanitize(img); !strings.Contains(got, "data:image/png") {
		t.Errorf("raster data image should be kept: %s", got)
	}
}
