package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, "DOCX"},
		{DOCM, "DOCM"},
		{DOTX, "DOTX"},
		{DOTM, "DOTM"},
		{XLSX, "XLSX"},
		{PPTX, "PPTX"},
		{ODT, "ODT"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, ".docx"},
		{DOCM, ".docm"},
		{DOTX, ".dotx"},
		{DOTM, ".dotm"},
		{ODT, ".odt"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_IsWordprocessing(t *testing.T) {
	for _, f := range []Format{DOCX, DOCM, DOTX, DOTM} {
		if !f.IsWordprocessing() {
			t.Errorf("%v.IsWordprocessing() = false, want true", f)
		}
	}
	for _, f := range []Format{Unknown, XLSX, PPTX, ODT} {
		if f.IsWordprocessing() {
			t.Errorf("%v.IsWordprocessing() = true, want false", f)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"document.docx", DOCX},
		{"document.DOCX", DOCX},
		{"document.Docx", DOCX},
		{"macros.docm", DOCM},
		{"letter.dotx", DOTX},
		{"letter.DOTM", DOTM},
		{"sheet.xlsx", XLSX},
		{"deck.pptx", PPTX},
		{"document.odt", ODT},
		{"document.txt", Unknown},
		{"document", Unknown},
		{"", Unknown},
		{"/path/to/file.docx", DOCX},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestIsZip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"zip header", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}, true},
		{"short", []byte{0x50, 0x4B}, false},
		{"empty", nil, false},
		{"pdf", []byte("%PDF-1.4"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZip(tt.data); got != tt.want {
				t.Errorf("IsZip() = %v, want %v", got, tt.want)
			}
		})
	}
}

// buildZip creates an in-memory ZIP archive from name → content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func contentTypes(mainType string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="` + mainType + `"/>
</Types>`
}

func TestDetectFromReader(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Format
	}{
		{
			name: "docx by content type",
			files: map[string]string{
				"[Content_Types].xml": contentTypes(contentTypeDocument),
				"word/document.xml":   "<w:document/>",
			},
			want: DOCX,
		},
		{
			name: "dotx by content type",
			files: map[string]string{
				"[Content_Types].xml": contentTypes(contentTypeTemplate),
				"word/document.xml":   "<w:document/>",
			},
			want: DOTX,
		},
		{
			name: "docm by content type",
			files: map[string]string{
				"[Content_Types].xml": contentTypes(contentTypeMacroDocument),
				"word/document.xml":   "<w:document/>",
			},
			want: DOCM,
		},
		{
			name: "word part without content types",
			files: map[string]string{
				"word/document.xml": "<w:document/>",
			},
			want: DOCX,
		},
		{
			name: "spreadsheet",
			files: map[string]string{
				"[Content_Types].xml": contentTypes("application/xml"),
				"xl/workbook.xml":     "<workbook/>",
			},
			want: XLSX,
		},
		{
			name: "opendocument",
			files: map[string]string{
				"mimetype":    "application/vnd.oasis.opendocument.text",
				"content.xml": "<office:document-content/>",
			},
			want: ODT,
		},
		{
			name:  "unrelated zip",
			files: map[string]string{"readme.txt": "hello"},
			want:  Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildZip(t, tt.files)
			got, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("DetectFromReader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFromReader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromReader_NotZip(t *testing.T) {
	data := []byte("Hello, World! This is plain text.")
	got, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if got != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", got)
	}
}

func TestDetectFromReader_CorruptZip(t *testing.T) {
	data := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0}, 16)...)
	if _, err := DetectFromReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("DetectFromReader() expected error for corrupt archive")
	}
}
