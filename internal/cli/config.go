package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Settings is the resolved CLI configuration
type Settings struct {
	Server      string
	Token       string
	NotionToken string
	AssumeYes   bool
	Verbose     bool
	Timeout     time.Duration
}

// initConfig reads ~/.config/shelf/config.yaml (or --config) and SHELF_*
// environment variables. A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "shelf"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SHELF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server", "http://localhost:8080")
	viper.SetDefault("timeout", 30*time.Second)

	_ = viper.ReadInConfig()
}

func loadSettings() Settings {
	return Settings{
		Server:      strings.TrimRight(viper.GetString("server"), "/"),
		Token:       viper.GetString("token"),
		NotionToken: viper.GetString("notion_token"),
		AssumeYes:   viper.GetBool("yes"),
		Verbose:     viper.GetBool("verbose"),
		Timeout:     viper.GetDuration("timeout"),
	}
}
