// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package config loads client settings from TOML files.
//
// A file looks like this:
//
//	session_id = "c2s"
//	id_prefix = "bot"
//	timeout = "30s"
//	poll_interval = "250ms"
//	subscriptions = "deny"
//	lang = "en"
//
//	[software]
//	name = "Romeo"
//	version = "1.0"
//
//	[[identity]]
//	category = "client"
//	type = "bot"
//
//	[log]
//	level = "debug"
//	format = "json"
//
// Unset keys keep the client defaults.
package config // import "mellium.im/jabber/config"

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"mellium.im/jabber"
)

// Duration is a time.Duration written as a string such as "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalText satisfies encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText satisfies encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Software is the version information reported to other entities.
type Software struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	OS      string `toml:"os"`
}

// Identity is a service discovery identity.
type Identity struct {
	Category string `toml:"category"`
	Type     string `toml:"type"`
	Name     string `toml:"name,omitempty"`
}

// Log configures the logger returned by Config.Logger.
type Log struct {
	// Level is one of debug, info, warn, or error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

// Config is the contents of a configuration file.
type Config struct {
	SessionID       string     `toml:"session_id,omitempty"`
	IDPrefix        string     `toml:"id_prefix,omitempty"`
	Timeout         Duration   `toml:"timeout,omitempty"`
	PollInterval    Duration   `toml:"poll_interval,omitempty"`
	Subscriptions   string     `toml:"subscriptions,omitempty"`
	TrackPresence   *bool      `toml:"track_presence,omitempty"`
	TrackRoster     *bool      `toml:"track_roster,omitempty"`
	LexicalPriority bool       `toml:"lexical_priority,omitempty"`
	Lang            string     `toml:"lang,omitempty"`
	Software        *Software  `toml:"software,omitempty"`
	Identity        []Identity `toml:"identity,omitempty"`
	Log             Log        `toml:"log"`
}

// Load reads a configuration file.
func Load(path string) (Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return c, undecoded(md)
}

// Parse reads configuration from a string.
func Parse(s string) (Config, error) {
	var c Config
	md, err := toml.Decode(s, &c)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, undecoded(md)
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	return fmt.Errorf("config: unknown keys: %s", strings.Join(names, ", "))
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Options returns the client options described by c.
// The logger is not included; see Logger.
func (c Config) Options() ([]jabber.Option, error) {
	var opts []jabber.Option
	if c.SessionID != "" {
		opts = append(opts, jabber.SessionID(c.SessionID))
	}
	if c.IDPrefix != "" {
		opts = append(opts, jabber.IDPrefix(c.IDPrefix))
	}
	if c.Timeout.Duration < 0 || c.PollInterval.Duration < 0 {
		return nil, errors.New("config: durations must not be negative")
	}
	if c.Timeout.Duration > 0 {
		opts = append(opts, jabber.Timeout(c.Timeout.Duration))
	}
	if c.PollInterval.Duration > 0 {
		opts = append(opts, jabber.PollInterval(c.PollInterval.Duration))
	}
	switch strings.ToLower(c.Subscriptions) {
	case "", "accept":
	case "deny":
		opts = append(opts, jabber.Subscriptions(jabber.Deny))
	case "manual":
		opts = append(opts, jabber.Subscriptions(jabber.Manual))
	default:
		return nil, fmt.Errorf("config: unknown subscription policy %q", c.Subscriptions)
	}
	if c.TrackPresence != nil {
		opts = append(opts, jabber.TrackPresence(*c.TrackPresence))
	}
	if c.TrackRoster != nil {
		opts = append(opts, jabber.TrackRoster(*c.TrackRoster))
	}
	if c.LexicalPriority {
		opts = append(opts, jabber.LexicalPriority())
	}
	if c.Lang != "" {
		tag, err := language.Parse(c.Lang)
		if err != nil {
			return nil, fmt.Errorf("config: bad lang %q: %w", c.Lang, err)
		}
		opts = append(opts, jabber.Lang(tag))
	}
	if c.Software != nil {
		opts = append(opts, jabber.Software(c.Software.Name, c.Software.Version, c.Software.OS))
	}
	for _, id := range c.Identity {
		if id.Category == "" || id.Type == "" {
			return nil, errors.New("config: identities need a category and type")
		}
		opts = append(opts, jabber.Identity(id.Category, id.Type, id.Name))
	}
	return opts, nil
}

// Logger returns a logger writing to w at the configured level and in the
// configured format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if c.Log.Level != "" {
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return nil, fmt.Errorf("config: bad log level: %w", err)
		}
	}
	o := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Log.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, o)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, o)), nil
	}
	return nil, fmt.Errorf("config: unknown log format %q", c.Log.Format)
}
