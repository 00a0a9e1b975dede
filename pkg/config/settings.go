package config

import (
	"strings"

	"github.com/spf13/viper"
)

// ServerSettings are the process-wide knobs that govern how the server
// itself runs, as distinct from the per-invocation SplunkConfig this
// package otherwise resolves: which transport to serve on, where to
// bind the HTTP transport, the log level, and the narrative
// summariser's model knobs. They are read once at startup via viper,
// which layers MCP_-prefixed environment variables over defaults.
type ServerSettings struct {
	Transport      TransportKind
	HTTPHost       string
	HTTPPort       int
	LogLevel       string
	OpenAIModel    string
	ContribRootDir string
}

// LoadServerSettings builds a viper instance scoped to the MCP_ prefix
// and decodes it into ServerSettings, applying defaults for anything
// unset.
func LoadServerSettings() ServerSettings {
	v := viper.New()
	v.SetEnvPrefix("MCP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("transport", string(TransportStdio))
	v.SetDefault("http_host", "127.0.0.1")
	v.SetDefault("http_port", 8765)
	v.SetDefault("log_level", "info")
	v.SetDefault("openai_model", "")
	v.SetDefault("contrib_root", "")

	return ServerSettings{
		Transport:      TransportKind(v.GetString("transport")),
		HTTPHost:       v.GetString("http_host"),
		HTTPPort:       v.GetInt("http_port"),
		LogLevel:       v.GetString("log_level"),
		OpenAIModel:    v.GetString("openai_model"),
		ContribRootDir: v.GetString("contrib_root"),
	}
}
