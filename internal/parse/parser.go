// parser.go — Signature extraction from raw log lines.
// Turns one heterogeneous log line into a canonical (timestamp, level rank,
// signature) event, or nothing when the line is noise below the severity
// floor. Two input shapes are recognized: JSON object lines (level/severity +
// msg/message fields) and free text lines with an optional leading ISO-8601
// timestamp and a [LEVEL] or bare LEVEL token. Lines with no recognizable
// level get a stable UNCLASSIFIED:<8-hex> signature derived from the
// normalized text.
package parse

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/logsieve/logsieve/internal/util"
)

// Event is a single parsed log occurrence. Transient: produced per line,
// folded into clusters, never persisted.
type Event struct {
	Signature string
	Timestamp time.Time
	LevelRank int
	Raw       string
}

var (
	// Leading "[2025-06-25T02:37:12.198126+00:00]" or bare "2025-06-25 02:37:12" prefixes.
	leadingTimestampRegex = regexp.MustCompile(`^\[?(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)\]?\s*`)

	bracketLevelRegex = regexp.MustCompile(`(?i)\[(CRITICAL|ERROR|WARNING|INFO|SERVICE|DEBUG)\]`)
	bareLevelRegex    = regexp.MustCompile(`(?i)\b(CRITICAL|ERROR|WARNING|INFO|SERVICE|DEBUG)\b`)

	// "SomethingException: detail" / "SomethingError ...: detail". The colon is
	// required: exception names without a detail separator read better left
	// intact ("NullPointerException in auth.py" keeps its prose).
	exceptionRegex = regexp.MustCompile(`\b(\w+(?:Exception|Error))\b[^:\n]*:\s*(.+)`)
)

// Extractor parses raw log lines into events, dropping anything below the
// configured severity floor.
type Extractor struct {
	minSeverity int
	now         func() time.Time
}

// NewExtractor returns an Extractor with the given severity floor
// (use ParseMinSeverity to derive the rank from a level name).
func NewExtractor(minSeverity int) *Extractor {
	return &Extractor{minSeverity: minSeverity, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the wall clock, for tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract parses one raw log line. The boolean is false when the line is
// filtered: empty, invalid UTF-8, or below the severity floor. Multi-line
// input is keyed on its first line only, but Raw keeps the full text.
func (e *Extractor) Extract(raw string) (Event, bool) {
	if !utf8.ValidString(raw) {
		return Event{}, false
	}
	line := raw
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, false
	}

	if strings.HasPrefix(trimmed, "{") {
		if ev, ok, handled := e.extractJSON(trimmed, raw); handled {
			return ev, ok
		}
		// Malformed JSON falls through to the text path.
	}

	ts := e.now()
	rest := trimmed
	if m := leadingTimestampRegex.FindStringSubmatch(rest); m != nil {
		if t, ok := util.ParseTimestamp(m[1]); ok {
			ts = t
		}
		rest = rest[len(m[0]):]
	}

	level, rank, candidate, found := findLevel(rest)
	if !found {
		// No level token anywhere: last-resort stable signature from the
		// normalized text. Rank 0, so the default WARNING floor drops these.
		if e.minSeverity > RankDebug {
			return Event{}, false
		}
		sum := sha1.Sum([]byte(Normalize(rest)))
		return Event{
			Signature: "UNCLASSIFIED:" + hex.EncodeToString(sum[:4]),
			Timestamp: ts,
			LevelRank: RankDebug,
			Raw:       raw,
		}, true
	}
	if rank < e.minSeverity {
		return Event{}, false
	}

	candidate = strings.TrimLeft(candidate, ":- \t")
	candidate = stripDetails(candidate)
	if m := exceptionRegex.FindStringSubmatch(candidate); m != nil {
		candidate = m[1] + " " + m[2]
	}

	return Event{
		Signature: buildSignature(level, candidate),
		Timestamp: ts,
		LevelRank: rank,
		Raw:       raw,
	}, true
}

// extractJSON handles lines that decode as a JSON object. The third return is
// false when the line is not a JSON object at all (caller falls through to
// the text path).
func (e *Extractor) extractJSON(trimmed, raw string) (Event, bool, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return Event{}, false, false
	}

	level := "INFO"
	if v, ok := jsonField(obj, "level", "severity"); ok {
		if _, known := LevelRank(v); known {
			level = strings.ToUpper(strings.TrimSpace(v))
		}
	}
	rank, _ := LevelRank(level)
	if rank < e.minSeverity {
		return Event{}, false, true
	}

	msg, _ := jsonField(obj, "msg", "message")

	ts := e.now()
	if v, ok := jsonField(obj, "timestamp", "time"); ok {
		if t, parsed := util.ParseTimestamp(v); parsed {
			ts = t
		}
	}

	return Event{
		Signature: buildSignature(level, msg),
		Timestamp: ts,
		LevelRank: rank,
		Raw:       raw,
	}, true, true
}

// jsonField returns the first of the named keys holding a string value,
// matching key names case-insensitively.
func jsonField(obj map[string]any, names ...string) (string, bool) {
	for _, name := range names {
		for k, v := range obj {
			if !strings.EqualFold(k, name) {
				continue
			}
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// findLevel locates the level token in rest: bracketed [LEVEL] first, then a
// bare word-boundary LEVEL. Returns the canonical level, its rank, and the
// text following the token.
func findLevel(rest string) (level string, rank int, candidate string, found bool) {
	for _, re := range []*regexp.Regexp{bracketLevelRegex, bareLevelRegex} {
		if loc := re.FindStringSubmatchIndex(rest); loc != nil {
			level = strings.ToUpper(rest[loc[2]:loc[3]])
			rank, _ = LevelRank(level)
			return level, rank, rest[loc[1]:], true
		}
	}
	return "", 0, "", false
}

// stripDetails removes a trailing JSON object suffix, together with a
// "Details:" label when one precedes it. Non-trailing braces are left alone.
func stripDetails(s string) string {
	trimmed := strings.TrimRight(s, " \t")
	if !strings.HasSuffix(trimmed, "}") {
		return s
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '{' {
			continue
		}
		if !json.Valid([]byte(trimmed[i:])) {
			continue
		}
		body := strings.TrimRight(trimmed[:i], " \t")
		body = strings.TrimSuffix(body, "Details:")
		return strings.TrimRight(body, " \t")
	}
	return s
}

// buildSignature joins the canonical level and normalized message. An empty
// message yields the bare level with no colon.
func buildSignature(level, message string) string {
	msg := Normalize(message)
	if msg == "" {
		return level
	}
	return level + ": " + msg
}
