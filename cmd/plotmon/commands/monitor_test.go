package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
)

func TestMonitorCommandConfig(t *testing.T) {
	configFile := `variant: h9
interval: 1m
max_retries: 5
layout:
  temp_extension: .tmp
`

	tests := map[string]struct {
		config    string
		args      []string
		expConfig func(dir string) *model.MonitorConfig
		expErr    bool
	}{
		"Without config file the defaults should be used": {
			args: []string{},
			expConfig: func(dir string) *model.MonitorConfig {
				return &model.MonitorConfig{
					Directory:    dir,
					Variant:      model.VariantStandard,
					Interval:     5 * time.Second,
					MaxRetries:   3,
					SampleWindow: 10,
					Layout: model.Layout{
						UnitPrefix:    "postdata_",
						UnitExtension: ".bin",
						TempExtension: ".dtmp",
						MetadataFile:  "postdata_metadata.json",
						ProgressFile:  "progress.json",
					},
				}
			},
		},
		"Config file values should be used when flags are not set": {
			config: configFile,
			args:   []string{},
			expConfig: func(dir string) *model.MonitorConfig {
				return &model.MonitorConfig{
					Directory:    dir,
					Variant:      model.VariantH9,
					Interval:     time.Minute,
					MaxRetries:   5,
					SampleWindow: 10,
					Layout: model.Layout{
						UnitPrefix:    "postdata_",
						UnitExtension: ".bin",
						TempExtension: ".tmp",
						MetadataFile:  "postdata_metadata.json",
						ProgressFile:  "progress.json",
					},
				}
			},
		},
		"Flags should override the config file": {
			config: configFile,
			args:   []string{"--variant", "standard", "--interval", "2s", "--sample-window", "4"},
			expConfig: func(dir string) *model.MonitorConfig {
				return &model.MonitorConfig{
					Directory:    dir,
					Variant:      model.VariantStandard,
					Interval:     2 * time.Second,
					MaxRetries:   5,
					SampleWindow: 4,
					Layout: model.Layout{
						UnitPrefix:    "postdata_",
						UnitExtension: ".bin",
						TempExtension: ".tmp",
						MetadataFile:  "postdata_metadata.json",
						ProgressFile:  "progress.json",
					},
				}
			},
		},
		"Interval flag without unit should be seconds": {
			args: []string{"--interval", "3"},
			expConfig: func(dir string) *model.MonitorConfig {
				return &model.MonitorConfig{
					Directory:    dir,
					Variant:      model.VariantStandard,
					Interval:     3 * time.Second,
					MaxRetries:   3,
					SampleWindow: 10,
					Layout: model.Layout{
						UnitPrefix:    "postdata_",
						UnitExtension: ".bin",
						TempExtension: ".dtmp",
						MetadataFile:  "postdata_metadata.json",
						ProgressFile:  "progress.json",
					},
				}
			},
		},
		"Invalid flag values should fail": {
			args:   []string{"--max-retries", "0"},
			expErr: true,
		},
		"Invalid config file should fail": {
			config: "variant: h10\n",
			args:   []string{},
			expErr: true,
		},
		"Invalid interval flag should fail": {
			args:   []string{"--interval", "soon"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)
			if test.config != "" {
				require.NoError(t, os.MkdirAll(filepath.Join(home, ".plotmon"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(home, ".plotmon", "config.yaml"), []byte(test.config), 0o644))
			}

			app := kingpin.New("plotmon", "")
			rootCmd := NewRootCommand(app)
			monitorCmd := NewMonitorCommand(rootCmd, app)
			rootCmd.Logger = log.Noop

			dir := t.TempDir()
			var cfg *model.MonitorConfig
			_, err := app.Parse(append([]string{"monitor", dir}, test.args...))
			if err == nil {
				cfg, err = monitorCmd.config(context.Background())
			}
			if test.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expConfig(dir), cfg)
		})
	}
}

func TestMonitorCommandExplicitMissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	app := kingpin.New("plotmon", "")
	rootCmd := NewRootCommand(app)
	monitorCmd := NewMonitorCommand(rootCmd, app)
	rootCmd.Logger = log.Noop

	_, err := app.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "monitor", t.TempDir()})
	require.NoError(t, err)

	_, err = monitorCmd.config(context.Background())
	assert.Error(t, err)
}

func TestMonitorCommandDirectory(t *testing.T) {
	argDir := t.TempDir()
	configDir := t.TempDir()

	tests := map[string]struct {
		config string
		args   []string
		expDir string
		expErr bool
	}{
		"Directory from the config file should be used without argument": {
			config: "directory: " + configDir + "\n",
			args:   []string{"monitor"},
			expDir: configDir,
		},
		"Directory argument should override the config file": {
			config: "directory: " + configDir + "\n",
			args:   []string{"monitor", argDir},
			expDir: argDir,
		},
		"Default command should use the config file directory": {
			config: "directory: " + configDir + "\n",
			args:   []string{},
			expDir: configDir,
		},
		"Missing directory should fail": {
			args:   []string{"monitor"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)
			if test.config != "" {
				require.NoError(t, os.MkdirAll(filepath.Join(home, ".plotmon"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(home, ".plotmon", "config.yaml"), []byte(test.config), 0o644))
			}

			app := kingpin.New("plotmon", "")
			rootCmd := NewRootCommand(app)
			monitorCmd := NewMonitorCommand(rootCmd, app)
			rootCmd.Logger = log.Noop

			_, err := app.Parse(test.args)
			require.NoError(t, err)

			cfg, err := monitorCmd.config(context.Background())
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expDir, cfg.Directory)
		})
	}
}
