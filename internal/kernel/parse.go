package kernel

import "regexp"

var (
	skillCallPattern    = regexp.MustCompile(`SKILL:(\w+)\(([^)]*)\)`)
	doubleQuotedPattern = regexp.MustCompile(`(\w+)\s*=\s*"([^"]*)"`)
	singleQuotedPattern = regexp.MustCompile(`(\w+)\s*=\s*'([^']*)'`)
)

// Invocation is one skill call found in model output. Raw holds the exact
// matched text so the caller can substitute the skill result in place.
type Invocation struct {
	Name string
	Args map[string]string
	Raw  string
}

// Reply is parsed model output: either plain text with no skill calls, or
// the same text plus the invocations embedded in it.
type Reply struct {
	Text        string
	Invocations []Invocation
}

// IsPlain reports whether the reply carries no skill calls.
func (r Reply) IsPlain() bool { return len(r.Invocations) == 0 }

// ParseReply scans model output for SKILL:name(key="value") calls. Arguments
// accept double or single quotes; anything else inside the parentheses is
// ignored. Unparseable junk never fails the parse, it just yields plain text.
func ParseReply(text string) Reply {
	matches := skillCallPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Reply{Text: text}
	}

	reply := Reply{Text: text}
	for _, m := range matches {
		inv := Invocation{Name: m[1], Args: map[string]string{}, Raw: m[0]}
		for _, p := range doubleQuotedPattern.FindAllStringSubmatch(m[2], -1) {
			inv.Args[p[1]] = p[2]
		}
		for _, p := range singleQuotedPattern.FindAllStringSubmatch(m[2], -1) {
			inv.Args[p[1]] = p[2]
		}
		reply.Invocations = append(reply.Invocations, inv)
	}
	return reply
}
