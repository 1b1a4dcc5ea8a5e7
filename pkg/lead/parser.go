package lead

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Marker is the literal token the model emits once the user has confirmed
// their details. It is the only trigger for lead extraction.
const Marker = "[LEAD_INFO_COLLECTED]"

// Labels written into degraded records.
const (
	DegradedMessagePrefix = "AI tried to capture lead. Full AI response: "
	DegradedInquiryType   = "AI Chat Lead (Parsing Error)"
)

// Tier identifies the strategy that produced a record.
type Tier int

const (
	// TierNone means no parse was attempted.
	TierNone Tier = iota

	// TierStructured is a full match of the field pattern.
	TierStructured

	// TierSplit is the comma-split fallback.
	TierSplit

	// TierDegraded carries the raw response in Message for a human to read.
	TierDegraded
)

// String returns the tier name used in logs and metric labels.
func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierSplit:
		return "split"
	case TierDegraded:
		return "degraded"
	default:
		return "none"
	}
}

// Outcome is the tag of a parse Result.
type Outcome int

const (
	// NoMarkerPresent means the text did not contain Marker.
	NoMarkerPresent Outcome = iota

	// Parsed means a record was recovered.
	Parsed

	// ParseFailed means the marker was present but extraction failed.
	// Result.Record still holds a best-effort record.
	ParseFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case ParseFailed:
		return "parse_failed"
	default:
		return "no_marker"
	}
}

// Result is the outcome of extracting a lead from model output.
type Result struct {
	Outcome    Outcome
	Tier       Tier
	Record     Record
	Diagnostic string
}

// HasLead reports whether the result carries a record to deliver.
func (r *Result) HasLead() bool {
	return r.Outcome != NoMarkerPresent
}

// Degraded reports whether anything other than the structured pattern
// produced the record.
func (r *Result) Degraded() bool {
	return r.HasLead() && r.Tier != TierStructured
}

// fieldPattern matches the marker wire format. Every field but Message stops
// at a comma; Message runs to the end of input, newlines included.
var fieldPattern = regexp.MustCompile(`(?s)FirstName:\s*(?P<FirstName>[^,]+)` +
	`(?:,\s*LastName:\s*(?P<LastName>[^,]+))?` +
	`,\s*Email:\s*(?P<Email>[^,]+)` +
	`(?:,\s*Phone:\s*(?P<Phone>[^,]+))?` +
	`,\s*Message:\s*(?P<Message>.+)`)

// Split locates Marker in text. reply is the trimmed text before the marker
// and content the trimmed text after it. found is false when the marker is
// absent, in which case reply is text unchanged.
func Split(text string) (reply, content string, found bool) {
	before, after, found := strings.Cut(text, Marker)
	if !found {
		return text, "", false
	}
	return strings.TrimSpace(before), strings.TrimSpace(after), true
}

// Extract splits a full model response and parses the lead if the marker is
// present. The degraded path quotes the whole response, not just the
// marker content.
func Extract(text string) (reply string, res Result) {
	reply, content, found := Split(text)
	if !found {
		return reply, Result{Outcome: NoMarkerPresent, Tier: TierNone}
	}
	return reply, parse(content, text)
}

// Parse recovers a Record from marker content, the text that follows Marker.
// It never fails: strategies are tried in order and the last one always
// yields a fully populated record.
func Parse(content string) Result {
	return parse(content, content)
}

func parse(content, raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = degraded(raw, fmt.Sprintf("parser panic: %v", r))
		}
	}()

	if !utf8.ValidString(content) {
		return degraded(raw, "marker content is not valid UTF-8")
	}

	if rec, ok := parseStructured(content); ok {
		return Result{Outcome: Parsed, Tier: TierStructured, Record: rec}
	}

	if strings.TrimSpace(content) == "" {
		rec := Record{}
		rec.backfill()
		return Result{
			Outcome:    ParseFailed,
			Tier:       TierDegraded,
			Record:     rec,
			Diagnostic: "marker content is empty",
		}
	}

	rec := parseSplit(content)
	if rec.Message == "" {
		// Nothing usable for a human follow-up: keep what was recovered
		// and carry the raw response in Message.
		rec.Message = DegradedMessagePrefix + raw
		rec.InquiryType = DegradedInquiryType
		rec.backfill()
		return Result{
			Outcome:    ParseFailed,
			Tier:       TierDegraded,
			Record:     rec,
			Diagnostic: "no Message field in marker content",
		}
	}
	rec.backfill()
	return Result{Outcome: Parsed, Tier: TierSplit, Record: rec}
}

func parseStructured(content string) (Record, bool) {
	m := fieldPattern.FindStringSubmatch(content)
	if m == nil {
		return Record{}, false
	}

	var rec Record
	for i, name := range fieldPattern.SubexpNames() {
		if name == "" {
			continue
		}
		rec.set(name, strings.TrimSpace(m[i]))
	}
	rec.backfill()
	return rec, true
}

// parseSplit is the tolerant fallback. Tokens are split on ", " and each
// token once on its first colon. Tokens without a colon are dropped, and a
// comma inside a non-Message value splits it; both are known limitations
// of the marker format.
//
// Message is captured eagerly: once its token is reached and no later token
// carries a canonical key, everything after "Message:" belongs to it.
func parseSplit(content string) Record {
	var rec Record
	tokens := strings.Split(content, ", ")

	for i, tok := range tokens {
		key, value, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		field := normalizeKey(key)
		value = strings.TrimSpace(value)

		if field == FieldMessage && !canonicalKeyIn(tokens[i+1:]) {
			rest := append([]string{value}, tokens[i+1:]...)
			rec.Message = strings.TrimSpace(strings.Join(rest, ", "))
			break
		}

		if rec.set(field, value) {
			continue
		}
		if field == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[field] = value
	}
	return rec
}

// normalizeKey maps a key onto its canonical spelling, case-insensitively.
// Unknown keys are capitalised.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	for _, f := range Fields {
		if strings.EqualFold(key, f) {
			return f
		}
	}
	return capitalize(key)
}

func canonicalKeyIn(tokens []string) bool {
	for _, tok := range tokens {
		key, _, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		for _, f := range Fields {
			if strings.EqualFold(key, f) {
				return true
			}
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func degraded(raw, diagnostic string) Result {
	rec := Record{
		Message:     DegradedMessagePrefix + strings.ToValidUTF8(raw, "�"),
		InquiryType: DegradedInquiryType,
	}
	rec.backfill()
	return Result{
		Outcome:    ParseFailed,
		Tier:       TierDegraded,
		Record:     rec,
		Diagnostic: diagnostic,
	}
}
