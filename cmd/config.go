package cmd

import (
	"github.com/pingcap/errors"
	"github.com/spf13/viper"
)

// TargetProfile is one named sync group in the config file, so operators can
// keep several environments in maintain-azuredatasync.yaml and mark one
// active.
type TargetProfile struct {
	Name          string `mapstructure:"name"`
	Subscription  string `mapstructure:"subscription"`
	ResourceGroup string `mapstructure:"resource_group"`
	Server        string `mapstructure:"server"`
	Database      string `mapstructure:"database"`
	SyncGroup     string `mapstructure:"sync_group"`
	HubDSN        string `mapstructure:"hub_dsn"`
	Active        bool   `mapstructure:"active"`
}

// GetActiveTargetProfile returns the profile marked active in the config
// file, if exactly one is.
func GetActiveTargetProfile() (*TargetProfile, error) {
	var profiles []TargetProfile

	if err := viper.UnmarshalKey("targets", &profiles); err != nil {
		return nil, errors.Annotate(err, "failed to parse targets config")
	}

	var active *TargetProfile
	count := 0
	for i := range profiles {
		if profiles[i].Active {
			active = &profiles[i]
			count++
		}
	}

	if count == 0 {
		return nil, errors.New("no active target found in config (set active: true)")
	}
	if count > 1 {
		return nil, errors.New("multiple active targets found (only one can be active)")
	}
	return active, nil
}
