package harvest_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizharvest/quizharvest/internal/config"
	"github.com/quizharvest/quizharvest/internal/harvest"
	"github.com/quizharvest/quizharvest/internal/tags"
)

// questionPage builds a snapshot with one active question container.
func questionPage(number, section string, correctAt int, options ...string) string {
	rows := ""
	for i, opt := range options {
		class := "option-row"
		if i == correctAt {
			class += " correct"
		}
		rows += fmt.Sprintf(`<div class="%s"><div class="option-content">%s</div></div>`, class, opt)
	}
	return fmt.Sprintf(`<html><body>
<ul><li class="section-tab active">%s</li></ul>
<div class="question-panel active">
  <div class="question-number">Question <span class="hide-on-mobile">No. </span>%s</div>
  <div class="question-text"><p>What is 2+2?</p></div>
  %s
  <div class="solution-content"><p>Because.</p></div>
</div>
</body></html>`, section, number, rows)
}

func TestExtract_MissingContainer(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors
	page := `<html><body><div class="question-panel">hidden alternate</div></body></html>`
	assert.Nil(t, harvest.Extract(sel, page, 1, 1000, 1))
}

func TestExtract_NoSanitizableOptions(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors
	page := questionPage("7", "Quantitative Aptitude", -1, "", "  ")
	assert.Nil(t, harvest.Extract(sel, page, 1, 1000, 1))
}

func TestExtract_CorrectIndex(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors

	rec := harvest.Extract(sel, questionPage("7", "Quantitative Aptitude", 2, "3", "4", "5", "6"), 1, 1000, 1)
	require.NotNil(t, rec)
	// Third option carries the marker: one-based position 3.
	assert.Equal(t, 3, rec.CorrectAnswer)

	rec = harvest.Extract(sel, questionPage("7", "Quantitative Aptitude", -1, "3", "4", "5", "6"), 1, 1000, 1)
	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.CorrectAnswer)
}

func TestExtract_FieldsAndTag(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors
	rec := harvest.Extract(sel, questionPage("12", "Quantitative Aptitude", 1, "3", "4"), 9, 1042, 7)
	require.NotNil(t, rec)

	assert.Equal(t, 1042, rec.NoteID)
	assert.Equal(t, 7, rec.SL)
	assert.Equal(t, "What is 2+2?", rec.Question)
	assert.Equal(t, "Because.", rec.Solution)
	assert.Equal(t, []string{tags.TagMath}, rec.Tags)

	require.Len(t, rec.Options, 4)
	require.NotNil(t, rec.Options[0])
	assert.Equal(t, "3", *rec.Options[0])
	require.NotNil(t, rec.Options[1])
	assert.Equal(t, "4", *rec.Options[1])
	assert.Nil(t, rec.Options[2])
	assert.Nil(t, rec.Options[3])
}

func TestExtract_ComprehensionPrefix(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors
	page := `<html><body>
<div class="question-panel active">
  <div class="question-number">3</div>
  <div class="comprehension-passage"><p>Read this passage.</p></div>
  <div class="question-text"><p>What did you read?</p></div>
  <div class="option-row"><div class="option-content">A passage</div></div>
</div>
</body></html>`
	rec := harvest.Extract(sel, page, 1, 1000, 1)
	require.NotNil(t, rec)
	assert.Equal(t, "Read this passage.<h2>Question</h2>What did you read?", rec.Question)
}

func TestExtract_NumberFallback(t *testing.T) {
	t.Parallel()

	sel := &config.DefaultSelectors
	// No digits in the displayed number: the caller-supplied page counter
	// stands in, here landing in the GK half of the combined section.
	page := `<html><body>
<ul><li class="section-tab active">General Intelligence and General Awareness</li></ul>
<div class="question-panel active">
  <div class="question-number">Question <span class="hide-on-mobile">No. </span></div>
  <div class="question-text">Capital of France?</div>
  <div class="option-row correct"><div class="option-content">Paris</div></div>
</div>
</body></html>`
	rec := harvest.Extract(sel, page, 40, 1000, 1)
	require.NotNil(t, rec)
	assert.Equal(t, []string{tags.TagGK}, rec.Tags)
}
