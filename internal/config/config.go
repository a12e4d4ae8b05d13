package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Timing    TimingConfig    `yaml:"timing"`
	Selectors SelectorsConfig `yaml:"selectors"`
	Output    OutputConfig    `yaml:"output"`
	Session   SessionConfig   `yaml:"session"`
}

// BrowserConfig holds the remote-debugging connection configuration
type BrowserConfig struct {
	DebugURL    string        `yaml:"debug_url"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
	NavRetries  int           `yaml:"nav_retries"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	PollEvery   time.Duration `yaml:"poll_every"`
}

// DelayRange is a [min,max] millisecond range for a randomized delay
type DelayRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// TimingConfig holds every randomized-delay range used by the session.
// Ranges are configuration, not behavior: the scrape sequence is identical
// with any values, only the pacing changes.
type TimingConfig struct {
	NavBackoff   DelayRange `yaml:"nav_backoff"`
	MouseStep    DelayRange `yaml:"mouse_step"`
	PreClick     DelayRange `yaml:"pre_click"`
	ClickGap     DelayRange `yaml:"click_gap"`
	PostClick    DelayRange `yaml:"post_click"`
	ScrollStep   DelayRange `yaml:"scroll_step"`
	PageSettle   DelayRange `yaml:"page_settle"`
	SolutionOpen DelayRange `yaml:"solution_open"`
}

// SelectorsConfig is the CSS selector contract for the target site
type SelectorsConfig struct {
	ExamTitle       string `yaml:"exam_title"`
	SolutionsButton string `yaml:"solutions_button"`
	NextButton      string `yaml:"next_button"`
	ViewSolution    string `yaml:"view_solution"`
	ActiveQuestion  string `yaml:"active_question"`
	QuestionNumber  string `yaml:"question_number"`
	NumberHidden    string `yaml:"number_hidden"` // stripped before reading the displayed number
	SectionName     string `yaml:"section_name"`
	Comprehension   string `yaml:"comprehension"`
	QuestionBody    string `yaml:"question_body"`
	SolutionBody    string `yaml:"solution_body"`
	OptionContainer string `yaml:"option_container"`
	OptionContent   string `yaml:"option_content"`
	CorrectClass    string `yaml:"correct_class"`
	LastQuestion    string `yaml:"last_question"` // page text marking the final question
}

// OutputConfig holds the output/log directory configuration
type OutputConfig struct {
	ResultDir     string `yaml:"result_dir"`
	LogDir        string `yaml:"log_dir"`
	AllowUntitled bool   `yaml:"allow_untitled"` // fall back to a generated name when the exam title is empty
}

// SessionConfig holds the per-run parameters
type SessionConfig struct {
	Limit     int    `yaml:"limit"` // 0 means unbounded
	Skip      int    `yaml:"skip"`
	CommonTag string `yaml:"common_tag"`
	BaseNote  int    `yaml:"base_note"`
}

// Load loads the configuration from a YAML file
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := CreateDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateDefault creates a default configuration
func CreateDefault() *AppConfig {
	return &AppConfig{
		Browser: BrowserConfig{
			DebugURL:    DefaultDebugURL,
			NavTimeout:  60 * time.Second,
			NavRetries:  3,
			WaitTimeout: 10 * time.Second,
			PollEvery:   250 * time.Millisecond,
		},
		Timing: TimingConfig{
			NavBackoff:   DelayRange{Min: 4000, Max: 6000},
			MouseStep:    DelayRange{Min: 15, Max: 45},
			PreClick:     DelayRange{Min: 200, Max: 600},
			ClickGap:     DelayRange{Min: 40, Max: 120},
			PostClick:    DelayRange{Min: 400, Max: 900},
			ScrollStep:   DelayRange{Min: 30, Max: 90},
			PageSettle:   DelayRange{Min: 1200, Max: 2400},
			SolutionOpen: DelayRange{Min: 800, Max: 1600},
		},
		Selectors: DefaultSelectors,
		Output: OutputConfig{
			ResultDir:     "output",
			LogDir:        "logs",
			AllowUntitled: true,
		},
		Session: SessionConfig{
			BaseNote: DefaultBaseNote,
		},
	}
}
