// Package history records calculation results and exports them as CSV.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/udisondev/powerlevel/internal/engine"
)

// Entry is one recorded attack.
type Entry struct {
	Profile        string  `csv:"profile"`
	Turn           int     `csv:"turn"`
	At             string  `csv:"at"`
	Damage         float64 `csv:"damage"`
	EnergyUsed     float64 `csv:"energy_used"`
	EnergyDamage   float64 `csv:"energy_damage"`
	SpeedUsed      float64 `csv:"speed_used"`
	ExtraDamage    float64 `csv:"extra_damage"`
	Health         float64 `csv:"health"`
	HealthDepleted bool    `csv:"health_depleted"`
	Warnings       int     `csv:"warnings"`
}

// Log accumulates entries in order. It is not safe for concurrent use.
type Log struct {
	entries []*Entry
	now     func() time.Time
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Record appends a result for profile.
func (l *Log) Record(profile string, turn int, res engine.Result) {
	l.entries = append(l.entries, &Entry{
		Profile:        profile,
		Turn:           turn,
		At:             l.now().UTC().Format(time.RFC3339),
		Damage:         res.Damage,
		EnergyUsed:     res.EnergyUsed,
		EnergyDamage:   res.EnergyDamage,
		SpeedUsed:      res.SpeedUsed,
		ExtraDamage:    res.ExtraDamage,
		Health:         res.Health,
		HealthDepleted: res.HealthDepleted,
		Warnings:       len(res.Warnings),
	})
}

// Merge appends all entries of other.
func (l *Log) Merge(other *Log) {
	l.entries = append(l.entries, other.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns the recorded entries.
func (l *Log) Entries() []*Entry { return l.entries }

// WriteCSV writes the log with a header row.
func (l *Log) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(l.entries, w); err != nil {
		return fmt.Errorf("writing history csv: %w", err)
	}
	return nil
}

// WriteFile writes the log to path, creating parent directories.
func (l *Log) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := l.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses entries written by WriteCSV.
func ReadCSV(r io.Reader) ([]*Entry, error) {
	var entries []*Entry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("reading history csv: %w", err)
	}
	return entries, nil
}
