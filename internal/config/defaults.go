package config

// DefaultDebugURL is where a debug-enabled Chrome is expected to listen
const DefaultDebugURL = "http://127.0.0.1:9222"

// DefaultBaseNote is the noteId the first record of a session would get
// with a zero skip count.
const DefaultBaseNote = 1000

// DefaultSelectors is the selector contract for the target site's
// solutions view. Override via the YAML config if the site markup shifts.
var DefaultSelectors = SelectorsConfig{
	ExamTitle:       "h1.exam-title",
	SolutionsButton: "button.solutions-btn",
	NextButton:      "button.next-question",
	ViewSolution:    "a.view-solution",
	ActiveQuestion:  "div.question-panel.active",
	QuestionNumber:  ".question-number",
	NumberHidden:    ".hide-on-mobile",
	SectionName:     "li.section-tab.active",
	Comprehension:   ".comprehension-passage",
	QuestionBody:    ".question-text",
	SolutionBody:    ".solution-content",
	OptionContainer: ".option-row",
	OptionContent:   ".option-content",
	CorrectClass:    "correct",
	LastQuestion:    "You've reached the last question",
}
