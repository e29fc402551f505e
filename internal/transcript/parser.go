package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aicb-dev/aicb/internal/model"
)

// ErrMalformedTranscript means the header timestamp could not be located
// (or a matched time token could not be interpreted as a clock time).
var ErrMalformedTranscript = errors.New("malformed transcript")

// Transcripts look like:
//
//	Date/time: 10.02.2023, 17:22 - 17:43
//
//	17:22 Awel wachtrij: Hallo!
//	17:26 *****: er is al een week ruzie
//	        en het wordt erger
//	17:31 Awel: Dag *****, welkom bij awel!
//
// The header end time is redundant with the last message and is discarded.
// Message content runs until the next line starting with an HH:MM token.
var (
	headerRe   = regexp.MustCompile(`Date/time:\s*(\d{2}\.\d{2}\.\d{4}),\s*(\d{2}:\d{2})\s*-\s*(\d{2}:\d{2})`)
	msgStartRe = regexp.MustCompile(`^(\d{2}:\d{2})\s+([^:]+):\s+(\S.*)$`)
	timeTokRe  = regexp.MustCompile(`^\d{2}:\d{2}`)
)

const (
	headerLayout = "02.01.2006 15:04"
	clockLayout  = "15:04"
)

// Config carries the dataset-specific knobs of the free-text parser.
// Operator aliases and the placeholder topic change per dataset year, so
// neither is hard-coded.
type Config struct {
	// OperatorAliases are sender labels classified as operator; anything
	// else is a user. Matched exactly after trimming.
	OperatorAliases []string

	// DefaultTopic is assigned when no classifier is supplied.
	DefaultTopic string

	// Source labels the ingestion origin in conversation metadata.
	Source string

	// ClassifyTopic, when set, derives a topic from the raw transcript.
	ClassifyTopic func(raw string) string
}

// Parser turns one raw transcript string into a model.Conversation.
type Parser struct {
	operators map[string]struct{}
	topic     string
	source    string
	classify  func(string) string
}

func NewParser(cfg Config) *Parser {
	ops := make(map[string]struct{}, len(cfg.OperatorAliases))
	for _, a := range cfg.OperatorAliases {
		ops[a] = struct{}{}
	}
	return &Parser{
		operators: ops,
		topic:     cfg.DefaultTopic,
		source:    cfg.Source,
		classify:  cfg.ClassifyTopic,
	}
}

// Parse extracts the header timestamp and the ordered message list from
// text. A missing header fails the whole transcript; a valid header with
// zero message lines is a success with an empty message list.
//
// Known limitations, kept deliberately: a sender label containing a colon
// is truncated at its first colon; message times earlier than the header
// start (midnight crossing) keep the header date; message order and the
// [start, end] window are not validated.
func (p *Parser) Parse(text string) (*model.Conversation, error) {
	hm := headerRe.FindStringSubmatch(text)
	if hm == nil {
		return nil, fmt.Errorf("%w: no header timestamp", ErrMalformedTranscript)
	}
	start, err := time.Parse(headerLayout, hm[1]+" "+hm[2])
	if err != nil {
		return nil, fmt.Errorf("%w: header timestamp %q %q: %v", ErrMalformedTranscript, hm[1], hm[2], err)
	}
	day := start.Truncate(24 * time.Hour)

	msgs, err := p.scanMessages(text, day)
	if err != nil {
		return nil, err
	}

	topic := p.topic
	if p.classify != nil {
		topic = p.classify(text)
	}

	return &model.Conversation{
		ID:       model.NewConversationID(),
		Topic:    topic,
		Messages: msgs,
		Raw:      text,
		Metadata: model.Metadata{Timestamp: start, Source: p.source},
	}, nil
}

// scanMessages walks the text line by line. A line matching the message
// pattern starts a new message; any line starting with a bare HH:MM token
// ends the current one (the lookahead boundary); everything else is folded
// into the current message's content.
func (p *Parser) scanMessages(text string, day time.Time) ([]model.Message, error) {
	// Non-nil so a header-only transcript serializes as [] rather than null.
	msgs := []model.Message{}

	var (
		open    bool
		ts      time.Time
		role    model.Role
		content []string
	)
	flush := func() {
		if !open {
			return
		}
		msgs = append(msgs, model.Message{
			Timestamp: ts,
			Role:      role,
			Content:   strings.TrimSpace(strings.Join(content, "\n")),
		})
		open = false
		content = content[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if sm := msgStartRe.FindStringSubmatch(line); sm != nil {
			flush()
			clock, err := time.Parse(clockLayout, sm[1])
			if err != nil {
				return nil, fmt.Errorf("%w: message time %q: %v", ErrMalformedTranscript, sm[1], err)
			}
			// Messages carry no date of their own; reuse the header's.
			ts = day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
			role = p.classifyRole(sm[2])
			content = append(content, sm[3])
			open = true
			continue
		}
		if timeTokRe.MatchString(line) {
			// Timestamped line that is not a well-formed message start
			// still terminates the previous message's content.
			flush()
			continue
		}
		if open {
			content = append(content, line)
		}
	}
	flush()

	return msgs, nil
}

func (p *Parser) classifyRole(sender string) model.Role {
	if _, ok := p.operators[strings.TrimSpace(sender)]; ok {
		return model.RoleOperator
	}
	return model.RoleUser
}
