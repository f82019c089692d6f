package assessment

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// Role of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MetaStage is the metadata key under which a backend-provided stage arrives.
const MetaStage = "assessment_stage"

// TranscriptWindow bounds how much of the transcript feeds stage inference
// and backend history.
const TranscriptWindow = 10

// Entry is one append-only transcript record.
type Entry struct {
	ID        uuid.UUID         `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Conversation tracks one logical consultation: the transcript, the stage
// machine and the extracted assessment progress. It is the only writer of
// its own state; readers get copies.
type Conversation struct {
	classifier Classifier
	logger     *Logger.Logger

	mu       sync.Mutex
	id       uuid.UUID
	entries  []Entry
	machine  *fsm.FSM
	symptoms map[string]struct{}
	duration string
	severity string
}

func New(classifier Classifier, logger *Logger.Logger) *Conversation {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	return &Conversation{
		classifier: classifier,
		logger:     logger,
		id:         uuid.New(),
		machine:    newStageMachine(),
		symptoms:   make(map[string]struct{}),
	}
}

// ID is the logical consultation identifier, distinct from the voice session
// id; it exists for export and audit.
func (c *Conversation) ID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// AddMessage appends to the transcript. Assistant turns advance the stage:
// an explicit stage in metadata is adopted verbatim, otherwise the
// classifier infers one from the transcript window. Regressions are dropped
// by the stage machine.
func (c *Conversation) AddMessage(role Role, content string, metadata map[string]string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	c.entries = append(c.entries, entry)

	if role != RoleAssistant {
		return entry
	}

	target, explicit := Stage(""), false
	if metadata != nil {
		if s, ok := ParseStage(metadata[MetaStage]); ok {
			target, explicit = s, true
		}
	}
	if !explicit {
		target = c.classifier.Classify(c.window())
	}

	before := Stage(c.machine.Current())
	after := advanceStage(c.machine, target)
	if before != after {
		c.logger.Infof("assessment stage %s -> %s (conversation %s)", before, after, c.id)
	}
	return entry
}

// UpdateProgress scans a user/assistant exchange for symptom, duration and
// severity signals. Newly found symptoms union into the set; nothing is ever
// removed.
func (c *Conversation) UpdateProgress(userMessage, aiResponse string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, text := range []string{userMessage, aiResponse} {
		for _, s := range scanSymptoms(text) {
			c.symptoms[s] = struct{}{}
		}
		if d := scanDuration(text); d != "" {
			c.duration = d
		}
		if sev := scanSeverity(text); sev != "" {
			c.severity = sev
		}
	}
}

// Stage reports the current assessment stage.
func (c *Conversation) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stage(c.machine.Current())
}

// Progress returns a copy of the extracted assessment state.
func (c *Conversation) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	symptoms := make([]string, 0, len(c.symptoms))
	for s := range c.symptoms {
		symptoms = append(symptoms, s)
	}
	sort.Strings(symptoms)

	return Progress{
		Stage:    Stage(c.machine.Current()),
		Symptoms: symptoms,
		Duration: c.duration,
		Severity: c.severity,
	}
}

// Window returns a copy of the most recent transcript entries, bounded by
// TranscriptWindow.
func (c *Conversation) Window() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.window()
	out := make([]Entry, len(w))
	copy(out, w)
	return out
}

// History returns the full transcript for export.
func (c *Conversation) History() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartNew resets all conversation state and allocates a fresh consultation
// id.
func (c *Conversation) StartNew() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return c.id
}

// Clear resets the conversation. Equivalent to StartNew except the new id is
// not returned.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Conversation) reset() {
	c.id = uuid.New()
	c.entries = nil
	c.symptoms = make(map[string]struct{})
	c.duration = ""
	c.severity = ""
	c.machine = newStageMachine()
	c.logger.Infof("started consultation %s", c.id)
}

// window assumes the lock is held.
func (c *Conversation) window() []Entry {
	if len(c.entries) <= TranscriptWindow {
		return c.entries
	}
	return c.entries[len(c.entries)-TranscriptWindow:]
}
