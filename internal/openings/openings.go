// Package openings holds the catalog types the core pipeline consumes but
// does not produce: Opening entries and the set of TrustedChannel
// configuration records. The catalog loader itself lives outside the core
// (spec §1, §6) and is modeled here only as the Catalog interface.
package openings

// Opening is an immutable catalog entry. It is loaded once per run and never
// mutated by the pipeline (spec §3).
type Opening struct {
	FEN        string   `json:"fen"`
	ECO        string   `json:"eco"`
	Name       string   `json:"name"`
	Variation  string   `json:"variation,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
	Moves      []string `json:"moves,omitempty"`
}

// QualityTier is the trust level assigned to a configured channel.
type QualityTier string

const (
	TierPremium  QualityTier = "premium"
	TierStandard QualityTier = "standard"
)

// TrustedChannel is a configured, authoritative video source (spec §3).
type TrustedChannel struct {
	ChannelID   string      `yaml:"channel_id" json:"channel_id"`
	Name        string      `yaml:"name" json:"name"`
	QualityTier QualityTier `yaml:"quality_tier" json:"quality_tier"`
	Priority    int         `yaml:"priority" json:"priority"`
}

// RSSURL derives the per-channel Atom feed URL (spec §6).
func (c TrustedChannel) RSSURL() string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + c.ChannelID
}

// channelConfigFile is the on-disk shape of the trusted-channel config file
// (spec §6): {trusted_channels: [...]}.
type channelConfigFile struct {
	TrustedChannels []TrustedChannel `yaml:"trusted_channels"`
}

// Catalog is the external collaborator (spec §1, §6) that supplies openings
// needing videos and tracks which positions are already covered. The core
// depends only on this contract; its implementation (loading from a DB,
// JSON file, or generator) is out of scope.
type Catalog interface {
	// Openings returns the catalog entries to process, optionally filtered
	// by ECO letter (§6 CLI surface, --eco flag). An empty filter means
	// all openings.
	Openings(ecoFilter string) ([]Opening, error)

	// HasExistingVideos reports whether a position already has a non-empty
	// video file, so the orchestrator can skip it (spec §4.8).
	HasExistingVideos(fen string) bool
}
