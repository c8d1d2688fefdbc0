package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Section names understood by the sync protocol.
const (
	SectionTide     = "TIDE"
	SectionForecast = "FORECAST"
	SectionNotes    = "NOTES"
)

// requiredSections must each appear exactly once in a stored body.
var requiredSections = []string{SectionTide, SectionForecast, SectionNotes}

// machineSections are rewritten on every sync. Everything else belongs to the user.
var machineSections = map[string]bool{SectionTide: true, SectionForecast: true}

// markerRe matches a section marker line such as "[NOTES]".
var markerRe = regexp.MustCompile(`^\[([A-Z]+)\]$`)

// Section is one named block of a record body.
type Section struct {
	Name    string
	Content string
}

// Sections is a parsed record body: free text before the first marker
// followed by named sections in body order.
type Sections struct {
	Preamble string
	List     []Section
}

// Get returns the content of the named section.
func (s Sections) Get(name string) (string, bool) {
	for _, sec := range s.List {
		if sec.Name == name {
			return sec.Content, true
		}
	}
	return "", false
}

// ParseSections splits body into sections. Everything after the first [NOTES]
// marker line is the NOTES content, byte for byte. It returns
// ErrCorruptedRecord when a required marker is missing or repeated.
func ParseSections(body string) (Sections, error) {
	head, notes, hasNotes := cutNotes(body)
	lines := strings.Split(strings.ReplaceAll(head, "\r\n", "\n"), "\n")

	var (
		out     Sections
		current *Section
		buf     []string
	)
	flush := func() {
		text := strings.Join(trimSeparator(buf), "\n")
		if current == nil {
			out.Preamble = text
		} else {
			current.Content = text
			out.List = append(out.List, *current)
		}
		buf = nil
	}

	for _, line := range lines {
		if m := markerRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &Section{Name: m[1]}
			continue
		}
		buf = append(buf, line)
	}
	if hasNotes {
		flush()
		out.List = append(out.List, Section{Name: SectionNotes, Content: notes})
	} else {
		// The final block has no separator after it, so keep it as-is.
		if current == nil {
			out.Preamble = strings.Join(buf, "\n")
		} else {
			current.Content = strings.Join(buf, "\n")
			out.List = append(out.List, *current)
		}
	}

	if err := out.validate(); err != nil {
		return Sections{}, err
	}
	return out, nil
}

// cutNotes splits body at the first [NOTES] marker line. head excludes the
// line break before the marker and notes is everything after the marker line.
func cutNotes(body string) (head, notes string, ok bool) {
	marker := "[" + SectionNotes + "]"
	rest, offset := body, 0
	for {
		line, tail, more := strings.Cut(rest, "\n")
		if strings.TrimSuffix(line, "\r") == marker {
			head = strings.TrimSuffix(strings.TrimSuffix(body[:offset], "\n"), "\r")
			return head, tail, true
		}
		if !more {
			return body, "", false
		}
		offset += len(line) + 1
		rest = tail
	}
}

// trimSeparator drops the single blank line Render places between blocks.
func trimSeparator(lines []string) []string {
	if n := len(lines); n > 0 && lines[n-1] == "" {
		return lines[:n-1]
	}
	return lines
}

func (s Sections) validate() error {
	counts := make(map[string]int, len(s.List))
	for _, sec := range s.List {
		counts[sec.Name]++
	}
	for _, name := range requiredSections {
		switch counts[name] {
		case 0:
			return fmt.Errorf("%w: missing [%s] section", ErrCorruptedRecord, name)
		case 1:
		default:
			return fmt.Errorf("%w: duplicate [%s] section", ErrCorruptedRecord, name)
		}
	}
	return nil
}

// Render joins the sections back into a body. ParseSections(s.Render())
// returns s for any s produced by ParseSections or MergeSections.
func (s Sections) Render() string {
	var b strings.Builder
	if s.Preamble != "" {
		b.WriteString(s.Preamble)
		b.WriteString("\n\n")
	}
	for i, sec := range s.List {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[" + sec.Name + "]\n")
		b.WriteString(sec.Content)
	}
	return b.String()
}

// MergeSections builds the body for an existing record. The preamble and
// machine-owned sections come from fresh. User-owned sections from existing
// are carried over verbatim, with NOTES always last. Neither argument is
// modified.
func MergeSections(existing, fresh Sections) Sections {
	merged := Sections{Preamble: fresh.Preamble}

	for _, sec := range fresh.List {
		if machineSections[sec.Name] {
			merged.List = append(merged.List, sec)
		}
	}
	for _, sec := range existing.List {
		if !machineSections[sec.Name] && sec.Name != SectionNotes {
			merged.List = append(merged.List, sec)
		}
	}

	notes, ok := existing.Get(SectionNotes)
	if !ok {
		notes, _ = fresh.Get(SectionNotes)
	}
	merged.List = append(merged.List, Section{Name: SectionNotes, Content: notes})

	return merged
}
