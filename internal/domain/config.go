package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Engine       EngineSettings     `mapstructure:"engine"`
	Audio        AudioConfig        `mapstructure:"audio"`
	Presentation PresentationConfig `mapstructure:"presentation"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	SaveDir string `mapstructure:"save_dir"` // default destination when a request has none
	LogsDir string `mapstructure:"logs_dir"`
}

// EngineSettings locates the external engine and its helpers
type EngineSettings struct {
	YTDLPBinary string `mapstructure:"ytdlp_binary"`
	FFmpegDir   string `mapstructure:"ffmpeg_dir"` // bundled helper directory; empty means next to the executable
}

// AudioConfig contains MP3 output options
type AudioConfig struct {
	WriteTags bool `mapstructure:"write_tags"`
}

// PresentationConfig controls the event drain loop
type PresentationConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LogTail      int           `mapstructure:"log_tail"`
}

// HistoryConfig contains download history configuration
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	MaxEntries   int    `mapstructure:"max_entries"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Download: DownloadConfig{
			SaveDir: "$HOME/Downloads",
			LogsDir: "$HOME/.ytfile/logs",
		},
		Engine: EngineSettings{
			YTDLPBinary: "yt-dlp",
			FFmpegDir:   "",
		},
		Audio: AudioConfig{
			WriteTags: true,
		},
		Presentation: PresentationConfig{
			PollInterval: 100 * time.Millisecond,
			LogTail:      200,
		},
		History: HistoryConfig{
			DatabasePath: "$HOME/.ytfile/history.db",
			MaxEntries:   50,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
