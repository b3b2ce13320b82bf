package chrome

import (
	"fmt"
	"os"
	"strings"
)

// Rule is one CSS rule: a single .class selector and its raw declarations.
type Rule struct {
	Selector string
	Props    map[string]string
}

// Stylesheet is an ordered list of rules. Later rules override earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// DefaultCSS styles the viewport, the Reset View pill and the loading skeleton.
const DefaultCSS = `
.viewport     { background: #f8fafc; }
.reset-pill   { background: #ffffffcc; color: #0f172a; border: #e2e8f0; height: 40px; padding: 16px; bottom: 20px; font-size: 18px; }
.skeleton     { background: #e2e8f0; width: 300px; height: 300px; radius: 12px; }
.loading-text { color: #64748b; font-size: 20px; margin-top: 16px; }
`

// ParseCSS reads a small subset of CSS: ".class { key: value; ... }" blocks and /* comments */.
// Blocks with any other selector are skipped. An unterminated block is an error.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	rest := stripComments(content)
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return sheet, nil
		}
		selector, after, ok := strings.Cut(rest, "{")
		if !ok {
			return nil, fmt.Errorf("css: expected '{' after %q", truncate(rest))
		}
		body, next, ok := strings.Cut(after, "}")
		if !ok {
			return nil, fmt.Errorf("css: unterminated block for %q", strings.TrimSpace(selector))
		}
		rest = next
		selector = strings.TrimSpace(selector)
		if len(selector) < 2 || selector[0] != '.' {
			continue
		}
		sheet.Rules = append(sheet.Rules, Rule{Selector: selector, Props: declarations(body)})
	}
}

// LoadStylesheet parses the CSS file at path, or DefaultCSS when path is empty.
func LoadStylesheet(path string) (*Stylesheet, error) {
	if path == "" {
		return ParseCSS(DefaultCSS)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	return ParseCSS(string(data))
}

// Props merges the declarations of every rule for class, in order.
func (s *Stylesheet) Props(class string) map[string]string {
	out := make(map[string]string)
	if s == nil {
		return out
	}
	for _, r := range s.Rules {
		if r.Selector[1:] != class {
			continue
		}
		for k, v := range r.Props {
			out[k] = v
		}
	}
	return out
}

func stripComments(s string) string {
	var b strings.Builder
	for {
		before, after, ok := strings.Cut(s, "/*")
		b.WriteString(before)
		if !ok {
			return b.String()
		}
		_, s, ok = strings.Cut(after, "*/")
		if !ok {
			return b.String()
		}
	}
}

func declarations(body string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(body, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			props[k] = strings.TrimSpace(v)
		}
	}
	return props
}

func truncate(s string) string {
	if len(s) > 24 {
		return s[:24] + "..."
	}
	return s
}
