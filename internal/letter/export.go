package letter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/joseph-ayodele/contract-sentinel/constants"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// writeDraft writes content to path. A directory target gets the default file
// name; .html and .htm targets are rendered from markdown.
func writeDraft(path, content string) (string, error) {
	if path == "" {
		path = "."
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, constants.LetterFileName)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		b, err := RenderHTML(content)
		if err != nil {
			return "", err
		}
		data = b
	default:
		data = []byte(content)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write letter: %w", err)
	}
	return path, nil
}

// RenderHTML renders a letter as a standalone HTML document.
func RenderHTML(content string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(content), &body); err != nil {
		return nil, fmt.Errorf("render letter: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Legal letter</title></head><body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body></html>\n")
	return out.Bytes(), nil
}
