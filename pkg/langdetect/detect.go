// Package langdetect suggests info strings for fenced code blocks in notes.
// It combines shebangs, cheap content patterns, and the go-enry classifier,
// and recognizes the diagram and math languages common in note vaults.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language constants for common detected languages.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langText       = "text"
	langBash       = "bash"
	langMermaid    = "mermaid"
	langLaTeX      = "latex"
)

// Method records how a suggestion was made.
type Method string

const (
	MethodShebang    Method = "shebang"
	MethodPattern    Method = "pattern"
	MethodClassifier Method = "classifier"
)

// Suggestion is a proposed fence language.
type Suggestion struct {
	Language string
	Method   Method
}

// classifierCandidates limits the classifier to languages seen in notes.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile", "TeX",
}

// Suggest proposes a language for code. ok is false when nothing is
// confident enough.
func Suggest(code []byte) (Suggestion, bool) {
	if len(bytes.TrimSpace(code)) == 0 {
		return Suggestion{}, false
	}

	if lang, safe := enry.GetLanguageByShebang(code); safe {
		return Suggestion{Language: normalize(lang), Method: MethodShebang}, true
	}

	if lang := detectByPattern(code); lang != "" {
		return Suggestion{Language: lang, Method: MethodPattern}, true
	}

	if lang, safe := enry.GetLanguageByClassifier(code, classifierCandidates); safe && lang != "" {
		return Suggestion{Language: normalize(lang), Method: MethodClassifier}, true
	}

	return Suggestion{}, false
}

// Detect returns the suggested language, or "text" when there is none.
func Detect(content []byte) string {
	if s, ok := Suggest(content); ok {
		return s.Language
	}
	return langText
}

// Known reports whether tag names a language that linguist knows, by name
// or alias. The note-specific diagram languages are known as well.
func Known(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch tag {
	case "":
		return false
	case langText, langMermaid, "math", "dataview", "dataviewjs", "plantuml":
		return true
	}
	_, ok := enry.GetLanguageByAlias(tag)
	return ok
}

type detector func(content []byte, str string) string

// detectors run in order of specificity.
//
//nolint:gochecknoglobals // Read-only lookup table.
var detectors = []detector{
	func(c []byte, _ string) string { return detectMermaid(bytes.TrimSpace(c)) },
	func(_ []byte, s string) string { return detectLaTeX(s) },
	func(c []byte, _ string) string { return detectGo(bytes.TrimSpace(c)) },
	func(_ []byte, s string) string { return detectPython(s) },
	func(c []byte, _ string) string { return detectHTML(bytes.TrimSpace(c)) },
	func(c []byte, _ string) string { return detectJSON(bytes.TrimSpace(c)) },
	func(c []byte, _ string) string { return detectDockerfile(c, bytes.TrimSpace(c)) },
	func(_ []byte, s string) string { return detectSQL(s) },
	func(_ []byte, s string) string { return detectRust(s) },
	func(_ []byte, s string) string { return detectJavaScript(s) },
	func(c []byte, _ string) string { return detectYAML(c) },
}

func detectByPattern(content []byte) string {
	str := string(content)
	for _, detect := range detectors {
		if lang := detect(content, str); lang != "" {
			return lang
		}
	}
	return ""
}

// mermaidHeaders open every mermaid diagram.
//
//nolint:gochecknoglobals // Read-only lookup table.
var mermaidHeaders = []string{
	"graph", "flowchart", "sequenceDiagram", "classDiagram", "stateDiagram",
	"erDiagram", "gantt", "pie", "mindmap", "timeline", "journey",
}

func detectMermaid(trimmed []byte) string {
	first, _, _ := bytes.Cut(trimmed, []byte("\n"))
	word, _, _ := strings.Cut(strings.TrimSpace(string(first)), " ")
	for _, header := range mermaidHeaders {
		if word == header || strings.HasPrefix(word, header+"-") {
			return langMermaid
		}
	}
	return ""
}

func detectLaTeX(contentStr string) string {
	if strings.Contains(contentStr, "\\begin{") || strings.Contains(contentStr, "\\documentclass") {
		return langLaTeX
	}
	return ""
}

// detectGo checks for Go language patterns.
func detectGo(trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("package ")) {
		return langGo
	}
	return ""
}

// detectPython checks for Python language patterns.
func detectPython(contentStr string) string {
	// def/class definitions with colon.
	if strings.Contains(contentStr, "def ") && strings.Contains(contentStr, "):") {
		return langPython
	}
	// Python import statements (not Go which uses "import (").
	if strings.Contains(contentStr, "import ") && !strings.Contains(contentStr, "import (") {
		if strings.Contains(contentStr, "from ") || strings.HasPrefix(strings.TrimSpace(contentStr), "import ") {
			return langPython
		}
	}
	// Python dunder variables.
	if strings.Contains(contentStr, "__name__") || strings.Contains(contentStr, "__main__") {
		return langPython
	}
	return ""
}

// detectHTML checks for HTML language patterns.
func detectHTML(trimmed []byte) string {
	lowerTrimmed := bytes.ToLower(trimmed)
	if bytes.Contains(lowerTrimmed, []byte("<!doctype html")) ||
		bytes.Contains(lowerTrimmed, []byte("<html")) ||
		bytes.Contains(lowerTrimmed, []byte("<head>")) ||
		bytes.Contains(lowerTrimmed, []byte("<body>")) {
		return langHTML
	}
	return ""
}

// detectJSON checks for JSON patterns.
func detectJSON(trimmed []byte) string {
	if (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`)) {
		return langJSON
	}
	return ""
}

// detectDockerfile checks for Dockerfile patterns.
func detectDockerfile(content, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("FROM ")) ||
		(bytes.Contains(content, []byte("\nFROM ")) && bytes.Contains(content, []byte("\nRUN "))) ||
		(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY "))) {
		return langDockerfile
	}
	return ""
}

// detectSQL checks for SQL patterns.
func detectSQL(contentStr string) string {
	upper := strings.ToUpper(contentStr)
	trimmedUpper := strings.TrimSpace(upper)
	if strings.HasPrefix(trimmedUpper, "SELECT ") ||
		strings.HasPrefix(trimmedUpper, "INSERT ") ||
		strings.HasPrefix(trimmedUpper, "UPDATE ") ||
		strings.HasPrefix(trimmedUpper, "DELETE ") ||
		strings.HasPrefix(trimmedUpper, "CREATE ") {
		return langSQL
	}
	return ""
}

// detectRust checks for Rust language patterns.
func detectRust(contentStr string) string {
	if strings.Contains(contentStr, "fn main()") ||
		strings.Contains(contentStr, "println!") ||
		strings.Contains(contentStr, "let mut ") {
		return langRust
	}
	return ""
}

// detectJavaScript checks for JavaScript patterns.
func detectJavaScript(contentStr string) string {
	if strings.Contains(contentStr, "=>") ||
		strings.Contains(contentStr, "const ") ||
		strings.Contains(contentStr, "let ") ||
		strings.Contains(contentStr, "console.log") {
		return langJavaScript
	}
	return ""
}

// detectYAML checks for YAML patterns by counting key: value pairs.
func detectYAML(content []byte) string {
	lines := bytes.Split(content, []byte("\n"))
	yamlKeyCount := 0

	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		// Simple key: value (identifier followed by colon and space).
		// Exclude lines that look like code (contain parentheses, brackets).
		if bytes.Contains(line, []byte(": ")) {
			if !bytes.Contains(line, []byte("(")) &&
				!bytes.Contains(line, []byte("{")) &&
				!bytes.HasPrefix(line, []byte(`"`)) {
				yamlKeyCount++
			}
		}
		// YAML list item at root level.
		if bytes.HasPrefix(line, []byte("- ")) {
			yamlKeyCount++
		}
	}

	if yamlKeyCount >= 2 {
		return langYAML
	}
	return ""
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return langBash
	case "TeX":
		return langLaTeX
	}
	return strings.ToLower(lang)
}
