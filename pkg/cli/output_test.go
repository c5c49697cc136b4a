package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/netbuf/pkg/buffer"
)

func TestOutput(t *testing.T) {
	data := map[string]any{"name": "frame", "size": 12}

	var js bytes.Buffer
	if err := Output(data, OutputOptions{Format: FormatJSON, Writer: &js}); err != nil {
		t.Fatalf("Output json error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil || decoded["name"] != "frame" {
		t.Fatalf("json output %q: %v", js.String(), err)
	}

	var ym bytes.Buffer
	if err := Output(data, OutputOptions{Writer: &ym}); err != nil {
		t.Fatalf("Output yaml error: %v", err)
	}
	if !strings.Contains(ym.String(), "name: frame") {
		t.Fatalf("yaml output %q", ym.String())
	}

	var raw bytes.Buffer
	if err := Output([]byte{0, 1, 2}, OutputOptions{Format: FormatRaw, Writer: &raw}); err != nil {
		t.Fatalf("Output raw error: %v", err)
	}
	if !bytes.Equal(raw.Bytes(), []byte{0, 1, 2}) {
		t.Fatalf("raw output %v", raw.Bytes())
	}

	if err := Output(data, OutputOptions{Format: "xml", Writer: &raw}); err == nil {
		t.Fatal("Output with unknown format succeeded")
	}
}

func TestOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := Output("hello", OutputOptions{Format: FormatRaw, File: path}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "hello" {
		t.Fatalf("file content %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("table"); err == nil {
		t.Error("ParseFormat(table) succeeded")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDecodeDocuments(t *testing.T) {
	input := "id: 1\nkind: ping\n---\n---\n- a\n- b\n---\n\"text\"\n"
	docs, err := DecodeDocuments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeDocuments error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents: %v", len(docs), docs)
	}
	m, ok := docs[0].(map[string]any)
	if !ok || m["kind"] != "ping" || m["id"] != 1 {
		t.Errorf("doc 0 = %#v", docs[0])
	}
	if docs[2] != "text" {
		t.Errorf("doc 2 = %#v", docs[2])
	}

	if _, err := DecodeDocuments(strings.NewReader("a: [\n")); err == nil {
		t.Error("DecodeDocuments accepted invalid YAML")
	}
}

func TestRenderLayout(t *testing.T) {
	b := buffer.New()
	b.AppendString("hello, world")
	b.Retrieve(7)

	out := RenderLayout(b, 100)
	for _, want := range []string{
		"prependable",
		"15 B",
		"5 B",
		"[15, 20)",
		"1012 B",
		"[20, 1032)",
		"world",
		"capacity 1.01 KB, margin 8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("layout missing %q:\n%s", want, out)
		}
	}

	empty := RenderLayout(buffer.New(), 60)
	if !strings.Contains(empty, "(empty)") {
		t.Errorf("empty layout:\n%s", empty)
	}
}

func TestRenderLayoutLongDump(t *testing.T) {
	b := buffer.New()
	b.Append(make([]byte, 1000))
	out := RenderLayout(b, 120)
	if !strings.Contains(out, "… 872 B more") {
		t.Errorf("layout does not summarize the dump:\n%s", out)
	}
}

func TestProportion(t *testing.T) {
	tests := []struct {
		sizes []int
		width int
	}{
		{[]int{8, 0, 1024}, 50},
		{[]int{8, 1, 1}, 10},
		{[]int{0, 0, 0}, 10},
		{[]int{1, 1, 1}, 3},
	}
	for _, tt := range tests {
		cells := proportion(tt.sizes, tt.width)
		total := 0
		for i, c := range cells {
			total += c
			if tt.sizes[i] > 0 && c == 0 {
				t.Errorf("proportion(%v) gave region %d no cell", tt.sizes, i)
			}
		}
		if tt.sizes[0]+tt.sizes[1]+tt.sizes[2] > 0 && total != tt.width {
			t.Errorf("proportion(%v, %d) = %v, sum %d", tt.sizes, tt.width, cells, total)
		}
	}
}
