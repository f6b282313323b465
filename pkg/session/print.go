package session

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// printedEvent is the YAML document written for a transfer.
type printedEvent struct {
	Type       string       `yaml:"type"`
	Kind       string       `yaml:"kind"`
	Source     uint8        `yaml:"source"`
	TransferID uint32       `yaml:"transfer_id"`
	Priority   uint8        `yaml:"priority"`
	Fields     wire.Payload `yaml:"fields,omitempty"`
}

// PrintYAML writes ev to w as a YAML document.
func PrintYAML(w io.Writer, ev transport.Event) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(printedEvent{
		Type:       ev.Message.Type,
		Kind:       ev.Kind.String(),
		Source:     uint8(ev.Source),
		TransferID: ev.TransferID,
		Priority:   uint8(ev.Priority),
		Fields:     ev.Message.Fields,
	})
	if err != nil {
		return err
	}
	return enc.Close()
}

// printMessage is the default subscription callback.
func (s *Session) printMessage(ev transport.Event) error {
	return PrintYAML(s.output, ev)
}

// printResponse returns the default request callback.
func (s *Session) printResponse(target wire.NodeID) transport.ResponseFunc {
	return func(ev transport.Event, err error) {
		if err != nil {
			fmt.Fprintf(s.output, "# request to node %v failed: %v\n", target, err)
			return
		}
		if err := PrintYAML(s.output, ev); err != nil {
			s.logger.Warn("failed to print response", "error", err)
		}
	}
}
