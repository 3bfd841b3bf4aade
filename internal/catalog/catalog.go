package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrNotFound = errors.New("not found")

// Category is one content theme the studio rotates through.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Moods       []string `json:"moods,omitempty"`
}

// Track is one background music track.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Filename    string   `json:"filename"`
	Seconds     int      `json:"seconds"`
	Mood        string   `json:"mood"`
	Instruments []string `json:"instruments,omitempty"`
}

// TrackLibrary is partitioned by target video length: short tracks back
// videos up to three minutes, long tracks back everything above that.
type TrackLibrary struct {
	Short []Track `json:"short"`
	Long  []Track `json:"long"`
}

// Catalog is the static generation configuration. Read-only after Load.
type Catalog struct {
	Categories []Category   `json:"categories"`
	Durations  []int        `json:"durations"` // seconds, in cycle order
	Tracks     TrackLibrary `json:"tracks"`
}

// ShortTrackMaxSeconds is the duration boundary between the two track partitions.
const ShortTrackMaxSeconds = 180

// Load reads a catalog JSON file. A missing path yields the built-in default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return errors.New("catalog: no categories")
	}
	if len(c.Durations) == 0 {
		return errors.New("catalog: no durations")
	}
	if len(c.Tracks.Short) == 0 && len(c.Tracks.Long) == 0 {
		return errors.New("catalog: no tracks")
	}
	return nil
}

// CategoryByID looks a category up by id.
func (c *Catalog) CategoryByID(id string) (Category, error) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, fmt.Errorf("category %q: %w", id, ErrNotFound)
}

// TrackByID searches both partitions.
func (c *Catalog) TrackByID(id string) (Track, error) {
	for _, t := range append(append([]Track{}, c.Tracks.Short...), c.Tracks.Long...) {
		if t.ID == id {
			return t, nil
		}
	}
	return Track{}, fmt.Errorf("track %q: %w", id, ErrNotFound)
}

// TracksForDuration returns the partition matching a video duration.
func (c *Catalog) TracksForDuration(seconds int) []Track {
	if seconds <= ShortTrackMaxSeconds {
		return c.Tracks.Short
	}
	return c.Tracks.Long
}

// ValidDuration reports whether the duration is part of the cycle.
func (c *Catalog) ValidDuration(seconds int) bool {
	for _, d := range c.Durations {
		if d == seconds {
			return true
		}
	}
	return false
}

// Default is the catalog the studio ships with.
func Default() *Catalog {
	return &Catalog{
		Categories: []Category{
			{ID: "misty-forest", Name: "Misty Forest", Icon: "🌲", Description: "Fog-laced woodland at first light"},
			{ID: "ocean-cliffs", Name: "Ocean Cliffs", Icon: "🌊", Description: "Waves breaking beneath coastal headlands"},
			{ID: "desert-dunes", Name: "Desert Dunes", Icon: "🏜️", Description: "Wind-sculpted sand under a wide sky"},
			{ID: "alpine-lakes", Name: "Alpine Lakes", Icon: "🏔️", Description: "Still water mirroring high peaks"},
			{ID: "rainy-city", Name: "Rainy City", Icon: "🌧️", Description: "Neon reflections on wet streets"},
			{ID: "northern-lights", Name: "Northern Lights", Icon: "🌌", Description: "Aurora over frozen tundra"},
			{ID: "bamboo-garden", Name: "Bamboo Garden", Icon: "🎋", Description: "Swaying bamboo and stone paths"},
			{ID: "autumn-valley", Name: "Autumn Valley", Icon: "🍂", Description: "Golden leaves drifting over a river"},
		},
		Durations: []int{180, 300},
		Tracks: TrackLibrary{
			Short: []Track{
				{ID: "st-01", Name: "Morning Dew", Filename: "morning_dew.mp3", Seconds: 185, Mood: "calm", Instruments: []string{"piano", "strings"}},
				{ID: "st-02", Name: "Drift", Filename: "drift.mp3", Seconds: 190, Mood: "ambient", Instruments: []string{"synth pad"}},
				{ID: "st-03", Name: "Stillwater", Filename: "stillwater.mp3", Seconds: 182, Mood: "meditative", Instruments: []string{"flute", "piano"}},
			},
			Long: []Track{
				{ID: "lt-01", Name: "Slow Horizon", Filename: "slow_horizon.mp3", Seconds: 310, Mood: "cinematic", Instruments: []string{"strings", "choir"}},
				{ID: "lt-02", Name: "Deep Field", Filename: "deep_field.mp3", Seconds: 320, Mood: "ambient", Instruments: []string{"synth pad", "cello"}},
				{ID: "lt-03", Name: "Evening Tide", Filename: "evening_tide.mp3", Seconds: 305, Mood: "calm", Instruments: []string{"piano"}},
			},
		},
	}
}
