package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Attr is one key=value pair from a log record.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed slog text record.
type Entry struct {
	Time  string
	Level string
	Msg   string
	Attrs []Attr
	Raw   string
}

// Parse splits a slog text-handler line into its well-known fields and the
// remaining attributes. Lines that are not key=value records come back with
// only Raw and Msg set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	pairs, ok := splitPairs(line)
	if !ok {
		entry.Msg = line
		return entry
	}
	for _, p := range pairs {
		switch p.Key {
		case "time":
			entry.Time = p.Value
		case "level":
			entry.Level = p.Value
		case "msg":
			entry.Msg = p.Value
		default:
			entry.Attrs = append(entry.Attrs, p)
		}
	}
	return entry
}

// Value returns the attribute stored under key.
func (e Entry) Value(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func splitPairs(line string) ([]Attr, bool) {
	var out []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t\"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, false
			}
			unquoted, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, false
			}
			value = unquoted
			rest = rest[len(quoted):]
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			value = rest[:sp]
			rest = rest[sp:]
		} else {
			value = rest
			rest = ""
		}
		out = append(out, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return out, len(out) > 0
}
