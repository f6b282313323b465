package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/buspanel/pkg/livestate"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/spin"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// Config holds the panel configuration. Every field can be set in the
// YAML file named by -config; flags given on the command line win.
type Config struct {
	ConfigFile   string        `yaml:"-"`
	NodeID       uint8         `yaml:"node_id"`
	Listen       string        `yaml:"listen"`
	Peers        []string      `yaml:"peers"`
	MDNS         bool          `yaml:"mdns"`
	Interface    string        `yaml:"interface"`
	StatusType   string        `yaml:"status_type"`
	LiveTimeout  time.Duration `yaml:"live_timeout"`
	Priority     uint8         `yaml:"priority"`
	SpinInterval time.Duration `yaml:"spin_interval"`
	TraceLog     string        `yaml:"trace_log"`
	LogLevel     string        `yaml:"log_level"`
	Interactive  bool          `yaml:"interactive"`
}

// peerList collects repeated -peer flags.
type peerList []string

func (p *peerList) String() string { return strings.Join(*p, ",") }

func (p *peerList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// defaultConfig returns the configuration used when nothing is set.
func defaultConfig() Config {
	return Config{
		Listen:       fmt.Sprintf(":%d", transport.DefaultUDPPort),
		StatusType:   livestate.DefaultMessageType,
		LiveTimeout:  livestate.DefaultTimeout,
		Priority:     uint8(session.DefaultPriority),
		SpinInterval: spin.DefaultInterval,
		LogLevel:     "info",
	}
}

// registerFlags binds cfg to fs.
func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.Func("node-id", "Local node ID, 1-127 (0 = anonymous, receive only)", func(s string) error {
		var id uint8
		if _, err := fmt.Sscan(s, &id); err != nil {
			return err
		}
		cfg.NodeID = id
		return nil
	})
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "UDP listen address")
	fs.Var((*peerList)(&cfg.Peers), "peer", "Peer address host:port (repeatable)")
	fs.BoolVar(&cfg.MDNS, "mdns", cfg.MDNS, "Advertise and discover peers via mDNS")
	fs.StringVar(&cfg.Interface, "interface", cfg.Interface, "Network interface for mDNS (default: all)")
	fs.StringVar(&cfg.StatusType, "status-type", cfg.StatusType, "Message type tracked in the live device list")
	fs.DurationVar(&cfg.LiveTimeout, "live-timeout", cfg.LiveTimeout, "Silence after which a device leaves the live list")
	fs.Func("priority", "Default transfer priority, 0-31", func(s string) error {
		var p uint8
		if _, err := fmt.Sscan(s, &p); err != nil {
			return err
		}
		cfg.Priority = p
		return nil
	})
	fs.DurationVar(&cfg.SpinInterval, "spin-interval", cfg.SpinInterval, "Transport spin cadence")
	fs.StringVar(&cfg.TraceLog, "trace-log", cfg.TraceLog, "Write a CBOR trace of all bus traffic to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "Enable interactive command mode")
}

// loadConfig parses args on top of the defaults and, if -config is given,
// merges the file underneath the flags that were set explicitly.
func loadConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	registerFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.ConfigFile == "" {
		return cfg, cfg.validate()
	}

	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	merged := defaultConfig()
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", cfg.ConfigFile, err)
	}
	merged.ConfigFile = cfg.ConfigFile

	// Re-apply the explicitly set flags over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config":
		case "peer":
			merged.Peers = append(merged.Peers, cfg.Peers...)
		default:
			applyFlag(&merged, &cfg, f.Name)
		}
	})
	return merged, merged.validate()
}

func applyFlag(dst, src *Config, name string) {
	switch name {
	case "node-id":
		dst.NodeID = src.NodeID
	case "listen":
		dst.Listen = src.Listen
	case "mdns":
		dst.MDNS = src.MDNS
	case "interface":
		dst.Interface = src.Interface
	case "status-type":
		dst.StatusType = src.StatusType
	case "live-timeout":
		dst.LiveTimeout = src.LiveTimeout
	case "priority":
		dst.Priority = src.Priority
	case "spin-interval":
		dst.SpinInterval = src.SpinInterval
	case "trace-log":
		dst.TraceLog = src.TraceLog
	case "log-level":
		dst.LogLevel = src.LogLevel
	case "interactive":
		dst.Interactive = src.Interactive
	}
}

func (c Config) validate() error {
	if id := wire.NodeID(c.NodeID); !id.IsAnonymous() && !id.IsValid() {
		return fmt.Errorf("node id %d out of range 1..%d", c.NodeID, wire.MaxNodeID)
	}
	if !wire.Priority(c.Priority).IsValid() {
		return fmt.Errorf("priority %d out of range 0..%d", c.Priority, wire.PriorityLowest)
	}
	if c.LiveTimeout <= 0 {
		return fmt.Errorf("live timeout must be positive, got %v", c.LiveTimeout)
	}
	if c.SpinInterval <= 0 {
		return fmt.Errorf("spin interval must be positive, got %v", c.SpinInterval)
	}
	if c.StatusType == "" {
		return fmt.Errorf("status type must not be empty")
	}
	return nil
}
