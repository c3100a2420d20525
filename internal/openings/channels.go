package openings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// LoadTrustedChannels reads the channel config file (spec §6):
// {trusted_channels: [{channel_id, name, quality_tier, priority}]}.
func LoadTrustedChannels(path string) ([]TrustedChannel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.IO(path, err)
	}

	var file channelConfigFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, xerrors.Parse("channel-config", err)
	}

	for i, ch := range file.TrustedChannels {
		if ch.ChannelID == "" {
			return nil, fmt.Errorf("%w: trusted_channels[%d] missing channel_id", xerrors.ErrConfigInvalid, i)
		}
		if ch.QualityTier == "" {
			file.TrustedChannels[i].QualityTier = TierStandard
		}
	}

	return file.TrustedChannels, nil
}
