package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a circulation scenario.
// A scenario seeds a library, runs a flow of operations against it, checks
// each outcome and finally asserts on the state a fresh process would load.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup establishes the initial catalog. Setup records are added
	// directly and produce no trace events.
	Setup Setup `yaml:"setup,omitempty"`

	// Flow contains the operations under test, in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the trace and the reloaded library.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Setup lists the books and members present before the flow starts.
type Setup struct {
	Books   []BookSeed   `yaml:"books,omitempty"`
	Members []MemberSeed `yaml:"members,omitempty"`
}

// BookSeed is a book added during setup.
type BookSeed struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

// MemberSeed is a member added during setup.
type MemberSeed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Step is one operation in the flow.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Member and Book identify the records the step works on.
	Member string `yaml:"member,omitempty"`
	Book   string `yaml:"book,omitempty"`

	// Title, Author and Name carry add_book / add_member fields.
	Title  string `yaml:"title,omitempty"`
	Author string `yaml:"author,omitempty"`
	Name   string `yaml:"name,omitempty"`

	// Expect is checked against the step result. Nil means no check.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies what a step must produce.
type Expect struct {
	// Outcome is the expected outcome kind ("success", "book_not_found", ...).
	// For most_borrowed it is "found" or "none".
	Outcome string `yaml:"outcome,omitempty"`

	// Message must equal the outcome message when set.
	Message string `yaml:"message,omitempty"`

	// Book is the id most_borrowed must report.
	Book string `yaml:"book,omitempty"`

	// Count is the borrow count most_borrowed must report.
	Count *int `yaml:"count,omitempty"`
}

// Step actions.
const (
	ActionAddBook      = "add_book"
	ActionAddMember    = "add_member"
	ActionBorrow       = "borrow"
	ActionReturn       = "return"
	ActionMostBorrowed = "most_borrowed"
)

// Assertion validates the trace or the reloaded library.
type Assertion struct {
	// Type specifies the assertion type:
	// - "book_available": Book's availability equals Available
	// - "member_holds": Member's borrowed list equals Books, in order
	// - "borrow_count": Book's cumulative borrow count equals Count
	// - "journal_count": journal entries matching Member/Book/Kind equal Count
	// - "trace_count": trace events with Action (and Outcome if set) equal Count
	Type string `yaml:"type"`

	Book      string   `yaml:"book,omitempty"`
	Member    string   `yaml:"member,omitempty"`
	Books     []string `yaml:"books,omitempty"`
	Available *bool    `yaml:"available,omitempty"`
	Kind      string   `yaml:"kind,omitempty"`
	Action    string   `yaml:"action,omitempty"`
	Outcome   string   `yaml:"outcome,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBookAvailable = "book_available"
	AssertMemberHolds   = "member_holds"
	AssertBorrowCount   = "borrow_count"
	AssertJournalCount  = "journal_count"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, b := range s.Setup.Books {
		if b.ID == "" {
			return fmt.Errorf("setup.books[%d]: id is required", i)
		}
	}
	for i, m := range s.Setup.Members {
		if m.ID == "" {
			return fmt.Errorf("setup.members[%d]: id is required", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Action {
	case ActionAddBook:
		if step.Book == "" {
			return fmt.Errorf("add_book requires book")
		}
	case ActionAddMember:
		if step.Member == "" {
			return fmt.Errorf("add_member requires member")
		}
	case ActionBorrow, ActionReturn:
		// Empty ids are legal inputs; they resolve to not-found outcomes.
	case ActionMostBorrowed:
		if step.Member != "" || step.Book != "" {
			return fmt.Errorf("most_borrowed takes no member or book")
		}
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertBookAvailable:
		if a.Book == "" || a.Available == nil {
			return fmt.Errorf("book_available requires book and available")
		}
	case AssertMemberHolds:
		if a.Member == "" {
			return fmt.Errorf("member_holds requires member")
		}
	case AssertBorrowCount:
		if a.Book == "" || a.Count == nil {
			return fmt.Errorf("borrow_count requires book and count")
		}
	case AssertJournalCount:
		if a.Count == nil {
			return fmt.Errorf("journal_count requires count")
		}
		if a.Kind != "" && a.Kind != ActionBorrow && a.Kind != ActionReturn {
			return fmt.Errorf("journal_count kind must be borrow or return, got %q", a.Kind)
		}
	case AssertTraceCount:
		if a.Action == "" || a.Count == nil {
			return fmt.Errorf("trace_count requires action and count")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
