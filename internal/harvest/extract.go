package harvest

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/quizharvest/quizharvest/internal/config"
	"github.com/quizharvest/quizharvest/internal/sanitize"
	"github.com/quizharvest/quizharvest/internal/tags"
	"github.com/quizharvest/quizharvest/pkg/models"
)

const maxOptions = 4

// questionSeparator sits between a comprehension passage and the
// question body in the composed export HTML.
const questionSeparator = "<h2>Question</h2>"

var digitsRe = regexp.MustCompile(`[0-9]+`)

// Extract pulls one QuestionRecord out of a full-page snapshot. A nil
// return means the page had nothing usable right now (container missing,
// empty question, no options); that is an expected per-page outcome, not
// an error. fallbackNumber stands in when the displayed question number
// cannot be parsed.
func Extract(sel *config.SelectorsConfig, pageHTML string, fallbackNumber, noteID, serial int) *models.QuestionRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	container := doc.Find(sel.ActiveQuestion).First()
	if container.Length() == 0 {
		return nil
	}

	number := displayedNumber(container, sel, fallbackNumber)
	section := strings.TrimSpace(doc.Find(sel.SectionName).First().Text())
	subjectTag := tags.Resolve(section, number)

	rawComprehension := innerHTML(container.Find(sel.Comprehension).First())
	rawQuestion := innerHTML(container.Find(sel.QuestionBody).First())
	rawSolution := innerHTML(container.Find(sel.SolutionBody).First())

	optionNodes := container.Find(sel.OptionContainer)
	rawOptions := make([]string, 0, maxOptions)
	correct := 0
	optionNodes.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxOptions {
			return false
		}
		rawOptions = append(rawOptions, innerHTML(s.Find(sel.OptionContent).First()))
		if s.HasClass(sel.CorrectClass) {
			correct = i + 1
		}
		return true
	})

	// The fragments are independent pure transformations; clean them in
	// parallel.
	var (
		wg            sync.WaitGroup
		comprehension string
		question      string
		solution      string
	)
	options := make([]*string, maxOptions)

	wg.Add(3)
	go func() { defer wg.Done(); comprehension = sanitize.Sanitize(rawComprehension) }()
	go func() { defer wg.Done(); question = sanitize.Sanitize(rawQuestion) }()
	go func() { defer wg.Done(); solution = sanitize.Sanitize(rawSolution) }()
	for i, raw := range rawOptions {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			if cleaned := sanitize.Sanitize(raw); cleaned != "" {
				options[i] = &cleaned
			}
		}(i, raw)
	}
	wg.Wait()

	if comprehension != "" {
		question = comprehension + questionSeparator + question
	}

	record := &models.QuestionRecord{
		NoteID:        noteID,
		SL:            serial,
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
		Solution:      solution,
	}
	if record.Question == "" || !record.HasOption() {
		return nil
	}
	if subjectTag != "" {
		record.Tags = append(record.Tags, subjectTag)
	}
	return record
}

// displayedNumber reads the question number shown on the page. The copy
// of the number duplicated for small screens is stripped before reading
// so the digits are not doubled up.
func displayedNumber(container *goquery.Selection, sel *config.SelectorsConfig, fallback int) int {
	node := container.Find(sel.QuestionNumber).First().Clone()
	node.Find(sel.NumberHidden).Remove()
	if match := digitsRe.FindString(node.Text()); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			return n
		}
	}
	return fallback
}

func innerHTML(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	html, err := s.Html()
	if err != nil {
		return ""
	}
	return html
}
