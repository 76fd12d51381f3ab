package config // import "github.com/jemtv/storyfeed/internal/config"

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/jemtv/storyfeed/internal/version"
)

const defaultArchiveURL = "https://5qlaecnhel.execute-api.us-east-1.amazonaws.com/prod/ashreinu/api/v1/unlocked/heres-my-story-archive"

var defaultUA = "Storyfeed/" + version.Version +
	" (+https://github.com/jemtv/storyfeed)"

// Option contains a key to value map of a single option. It may be used to
// output debug strings.
type Option struct {
	Key   string
	Value any
}

// Options contains configuration options.
type Options struct {
	Channel ChannelOptions `yaml:"channel"`

	env EnvOptions
}

// ChannelOptions is the fixed channel-level metadata of the generated feed.
// It never derives from story data.
type ChannelOptions struct {
	Title       string `yaml:"title" validate:"required"`
	Link        string `yaml:"link" validate:"required,url"`
	Description string `yaml:"description" validate:"required"`
	Language    string `yaml:"language" validate:"required"`
	SelfURL     string `yaml:"self_url" validate:"omitempty,url"`
}

type EnvOptions struct {
	LogFile     string `env:"LOG_FILE" validate:"required"`
	LogDateTime bool   `env:"LOG_DATE_TIME"`
	LogFormat   string `env:"LOG_FORMAT" validate:"required,oneof=json text"`
	LogLevel    string `env:"LOG_LEVEL" validate:"required,oneof=debug info warning error"`

	ArchiveURL      string `env:"ARCHIVE_URL" validate:"required,url"`
	ArchiveLanguage string `env:"ARCHIVE_LANGUAGE" validate:"required"`
	ResultsPerPage  int    `env:"RESULTS_PER_PAGE" validate:"min=1,max=200"`
	MaxPages        int    `env:"MAX_PAGES" validate:"min=0"`

	OutputFile  string `env:"OUTPUT_FILE" validate:"required"`
	MetricsFile string `env:"METRICS_FILE"`

	WorkerPoolSize int     `env:"WORKER_POOL_SIZE" validate:"min=1"`
	FetchRateLimit float64 `env:"FETCH_RATE_LIMIT" validate:"min=0"`

	HttpClientTimeout     int    `env:"HTTP_CLIENT_TIMEOUT" validate:"min=1"`
	HttpClientMaxBodySize int64  `env:"HTTP_CLIENT_MAX_BODY_SIZE" validate:"min=1"`
	HttpClientUserAgent   string `env:"HTTP_CLIENT_USER_AGENT"`
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		Channel: ChannelOptions{
			Title: "JEM.tv - Here's My Story Archive",
			Link:  "https://videos.jem.tv/hms/archive",
			Description: "Stories from the Here's My Story archive at JEM.tv" +
				" - Auto-updated hourly",
			Language: "en-us",
		},

		env: EnvOptions{
			LogFile:   "stderr",
			LogFormat: "text",
			LogLevel:  "info",

			ArchiveURL:      defaultArchiveURL,
			ArchiveLanguage: "en",
			ResultsPerPage:  50,

			OutputFile: "feed.xml",

			WorkerPoolSize: 4,
			FetchRateLimit: 4,

			HttpClientTimeout:     10,
			HttpClientMaxBodySize: 15,
			HttpClientUserAgent:   defaultUA,
		},
	}
}

func (self *Options) init() error {
	if err := self.validate(); err != nil {
		return err
	}
	self.env.HttpClientMaxBodySize *= 1024 * 1024
	return nil
}

func (self *Options) validate() error {
	if err := Validator().Struct(&self.env); err != nil {
		return fmt.Errorf("config: failed validate: %w", err)
	}

	if err := Validator().Struct(&self.Channel); err != nil {
		return fmt.Errorf("config: failed validate channel: %w", err)
	}

	// The feed emits the language verbatim, but it must be a real BCP 47 tag.
	if _, err := language.Parse(self.Channel.Language); err != nil {
		return fmt.Errorf("config: invalid channel language %q: %w",
			self.Channel.Language, err)
	}
	return nil
}

func (self *Options) LogFile() string { return self.env.LogFile }

// LogDateTime returns true if the date/time should be displayed in log
// messages.
func (self *Options) LogDateTime() bool { return self.env.LogDateTime }

// LogFormat returns the log format.
func (self *Options) LogFormat() string { return self.env.LogFormat }

// LogLevel returns the log level.
func (self *Options) LogLevel() string { return self.env.LogLevel }

// SetLogLevel sets the log level.
func (self *Options) SetLogLevel(level string) { self.env.LogLevel = level }

// ArchiveURL returns the base URL of the story archive API.
func (self *Options) ArchiveURL() string { return self.env.ArchiveURL }

// ArchiveLanguage returns the language query parameter sent to the archive.
func (self *Options) ArchiveLanguage() string {
	return self.env.ArchiveLanguage
}

// ResultsPerPage returns the page size requested from the archive.
func (self *Options) ResultsPerPage() int { return self.env.ResultsPerPage }

// MaxPages returns the pagination safety cap. Zero means no cap.
func (self *Options) MaxPages() int { return self.env.MaxPages }

// OutputFile returns the path of the generated feed.
func (self *Options) OutputFile() string { return self.env.OutputFile }

// SetOutputFile overrides the path of the generated feed.
func (self *Options) SetOutputFile(path string) { self.env.OutputFile = path }

// MetricsFile returns the path of the prometheus textfile export.
func (self *Options) MetricsFile() string { return self.env.MetricsFile }

// HasMetricsFile returns true if run metrics should be exported.
func (self *Options) HasMetricsFile() bool { return self.env.MetricsFile != "" }

// WorkerPoolSize returns the number of concurrent item builds.
func (self *Options) WorkerPoolSize() int { return self.env.WorkerPoolSize }

// FetchRateLimit returns the page requests per second. Zero disables pacing.
func (self *Options) FetchRateLimit() float64 { return self.env.FetchRateLimit }

// HTTPClientTimeout returns the time limit before the HTTP client cancels a
// request.
func (self *Options) HTTPClientTimeout() time.Duration {
	return time.Duration(self.env.HttpClientTimeout) * time.Second
}

// HTTPClientMaxBodySize returns the number of bytes allowed for the HTTP
// client to transfer.
func (self *Options) HTTPClientMaxBodySize() int64 {
	return self.env.HttpClientMaxBodySize
}

// HTTPClientUserAgent returns the User-Agent header sent to the archive.
func (self *Options) HTTPClientUserAgent() string {
	return self.env.HttpClientUserAgent
}

// SortedOptions returns options as a list of key value pairs, sorted by keys.
func (self *Options) SortedOptions() []Option {
	keyValues := map[string]any{
		"ARCHIVE_LANGUAGE":          self.ArchiveLanguage(),
		"ARCHIVE_URL":               self.ArchiveURL(),
		"CHANNEL_DESCRIPTION":       self.Channel.Description,
		"CHANNEL_LANGUAGE":          self.Channel.Language,
		"CHANNEL_LINK":              self.Channel.Link,
		"CHANNEL_SELF_URL":          self.Channel.SelfURL,
		"CHANNEL_TITLE":             self.Channel.Title,
		"FETCH_RATE_LIMIT":          self.FetchRateLimit(),
		"HTTP_CLIENT_MAX_BODY_SIZE": self.HTTPClientMaxBodySize(),
		"HTTP_CLIENT_TIMEOUT":       self.env.HttpClientTimeout,
		"HTTP_CLIENT_USER_AGENT":    self.HTTPClientUserAgent(),
		"LOG_DATE_TIME":             self.LogDateTime(),
		"LOG_FILE":                  self.LogFile(),
		"LOG_FORMAT":                self.LogFormat(),
		"LOG_LEVEL":                 self.LogLevel(),
		"MAX_PAGES":                 self.MaxPages(),
		"METRICS_FILE":              self.MetricsFile(),
		"OUTPUT_FILE":               self.OutputFile(),
		"RESULTS_PER_PAGE":          self.ResultsPerPage(),
		"WORKER_POOL_SIZE":          self.WorkerPoolSize(),
	}

	sortedKeys := slices.Sorted(maps.Keys(keyValues))
	sortedOptions := make([]Option, len(sortedKeys))
	for i, key := range sortedKeys {
		sortedOptions[i] = Option{Key: key, Value: keyValues[key]}
	}
	return sortedOptions
}

func (self *Options) String() string {
	var builder strings.Builder
	for _, option := range self.SortedOptions() {
		fmt.Fprintf(&builder, "%s=%v\n", option.Key, option.Value)
	}
	return builder.String()
}
