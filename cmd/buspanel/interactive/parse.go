package interactive

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/buspanel/pkg/wire"
)

// ErrUsage is returned for malformed command arguments.
var ErrUsage = errors.New("usage")

// options are the key=value arguments accepted by bus commands.
type options struct {
	Interval time.Duration
	Count    int
	Duration time.Duration
	Timeout  time.Duration
	Priority *wire.Priority
}

// splitArgs separates key=value options from the remaining words. Only
// the keys in allowed are treated as options, and never while a YAML flow
// mapping or sequence opened by an earlier word is still unclosed.
func splitArgs(args []string, allowed ...string) (rest []string, opts options, err error) {
	depth := 0
	for _, arg := range args {
		if depth == 0 {
			key, value, ok := strings.Cut(arg, "=")
			if ok && slices.Contains(allowed, key) {
				if err := opts.set(key, value); err != nil {
					return nil, options{}, err
				}
				continue
			}
		}
		rest = append(rest, arg)
		depth = max(depth+flowDepth(arg), 0)
	}
	return rest, opts, nil
}

// flowDepth returns how many YAML flow collections word opens, less the
// number it closes. Brackets inside quotes are ignored.
func flowDepth(word string) int {
	depth := 0
	var quote rune
	for _, r := range word {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '{' || r == '[':
			depth++
		case r == '}' || r == ']':
			depth--
		}
	}
	return depth
}

func (o *options) set(key, value string) error {
	switch key {
	case "interval", "duration", "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "interval":
			o.Interval = d
		case "duration":
			o.Duration = d
		default:
			o.Timeout = d
		}
	case "count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		o.Count = n
	case "priority":
		p, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("priority: %w", err)
		}
		prio := wire.Priority(p)
		if !prio.IsValid() {
			return fmt.Errorf("priority: %d out of range", p)
		}
		o.Priority = &prio
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

// parsePayload decodes a YAML mapping, flow or block style, into a
// payload. Empty input yields a nil payload.
func parsePayload(words []string) (wire.Payload, error) {
	src := strings.TrimSpace(strings.Join(words, " "))
	if src == "" {
		return nil, nil
	}

	var payload wire.Payload
	if err := yaml.Unmarshal([]byte(src), &payload); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return payload, nil
}

// parseNodeID parses a bus node ID.
func parseNodeID(s string) (wire.NodeID, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("node id %q: %w", s, err)
	}
	id := wire.NodeID(n)
	if !id.IsValid() {
		return 0, fmt.Errorf("node id %d out of range 1..%d", n, wire.MaxNodeID)
	}
	return id, nil
}

// parseJobID parses a job ID as printed by the jobs command.
func parseJobID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("job id %q: %w", s, err)
	}
	return uint32(n), nil
}
