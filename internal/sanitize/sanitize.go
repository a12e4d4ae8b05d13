// Package sanitize normalizes raw HTML fragments captured from the quiz
// page into a clean export form: editor artifacts and presentational
// wrappers are dropped, MathJax output is rewritten to inline LaTeX, and
// the result is minified.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Wrapper elements replaced by their inner content.
const unwrapSelector = "font, span.math-text"

// Editor artifacts removed together with their content.
const junkSelector = "span.ql-cursor, .fr-marker, [data-mce-bogus]"

// MathJax helper elements removed once the source TeX is recovered.
const mathHelperSelector = ".MathJax_Preview, .MJX_Assistive_MathML, span.MathJax"

// decorativeImagePatterns identify images that carry no content.
var decorativeImagePatterns = []string{
	"/assets/img/spacer",
	"transparent.gif",
}

var (
	digitsOnlyRe = regexp.MustCompile(`^[0-9]+$`)
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	brRunRe      = regexp.MustCompile(`(?i)(?:<br\s*/?>\s*){3,}`)
	leadingBrRe  = regexp.MustCompile(`(?i)^(?:\s*<br\s*/?>)+`)
	trailingBrRe = regexp.MustCompile(`(?i)(?:<br\s*/?>\s*)+$`)
)

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

// Sanitize runs the full cleanup pipeline over a single HTML fragment.
// Empty input returns an empty string; the function never fails — when
// minification errors out, the unminified result is returned instead.
func Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	doc.Find("[style]").RemoveAttr("style")
	unwrapAll(doc)
	doc.Find(junkSelector).Remove()
	convertDigitSpans(doc)
	convertMathScripts(doc)
	removeDecorativeImages(doc)
	unwrapParagraphs(doc)
	cleanTables(doc)

	out, err := doc.Find("body").Html()
	if err != nil {
		return strings.TrimSpace(raw)
	}

	out = commentRe.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "&nbsp;", " ")
	out = strings.ReplaceAll(out, " ", " ")
	out = strings.ReplaceAll(out, "&shy;", "")
	out = strings.ReplaceAll(out, "­", "")
	out = brRunRe.ReplaceAllString(out, "<br><br>")
	out = leadingBrRe.ReplaceAllString(out, "")
	out = trailingBrRe.ReplaceAllString(out, "")

	if minified, err := minifier.String("text/html", out); err == nil {
		out = minified
	}
	return strings.TrimSpace(out)
}

// unwrapAll replaces wrapper elements with their inner content. Outermost
// first, one at a time: replacing reparses the inner HTML, so nested
// wrappers reappear as fresh nodes and are picked up next round.
func unwrapAll(doc *goquery.Document) {
	for {
		sel := doc.Find(unwrapSelector).First()
		if sel.Length() == 0 {
			return
		}
		inner, err := sel.Html()
		if err != nil {
			sel.Remove()
			continue
		}
		sel.ReplaceWithHtml(inner)
	}
}

// convertDigitSpans rewrites childless spans whose text is purely digits
// into superscripts. The no-children check is load-bearing: a span with
// markup inside (<span><b>2</b></span>) is formatting, not an exponent.
func convertDigitSpans(doc *goquery.Document) {
	doc.Find("span").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if digitsOnlyRe.MatchString(text) {
			s.ReplaceWithHtml("<sup>" + text + "</sup>")
		}
	})
}

// convertMathScripts turns math/tex script tags into inline LaTeX
// delimiters and drops the MathJax preview/assistive renderings.
func convertMathScripts(doc *goquery.Document) {
	doc.Find(`script[type="math/tex"]`).Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(`\(` + s.Text() + `\)`)
	})
	doc.Find(mathHelperSelector).Remove()
}

func removeDecorativeImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		for _, pattern := range decorativeImagePatterns {
			if strings.Contains(src, pattern) {
				s.Remove()
				return
			}
		}
	})
}

// unwrapParagraphs flattens paragraphs to their content followed by a
// line break. Empty paragraphs vanish without leaving a break behind.
func unwrapParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		if err != nil || strings.TrimSpace(inner) == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml(inner + "<br>")
	})
}

// cleanTables strips legacy spacing attributes and removes line breaks
// inside tables and in the sibling runs directly around them.
func cleanTables(doc *goquery.Document) {
	doc.Find("table").RemoveAttr("cellpadding").RemoveAttr("cellspacing")
	doc.Find("table br").Remove()
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		for prev := s.Prev(); prev.Is("br"); {
			next := prev.Prev()
			prev.Remove()
			prev = next
		}
		for next := s.Next(); next.Is("br"); {
			after := next.Next()
			next.Remove()
			next = after
		}
	})
}
