// Package config implements component R, the configuration surface
// named in spec.md §6: every tunable the rest of the module exposes as
// a constructor parameter, gathered into one viper-bindable struct so a
// deployment can set them from a file, environment variables, or flags
// without threading them through by hand.
//
// Grounded on storj-storj's pkg/process struct-tag configuration idiom
// (pkg/process/exec_conf_test.go: cobra flags bound through viper, env
// vars of the form "<PREFIX>_<FIELD>") and on giantswarm-muster's go.mod
// dependency on spf13/viper for the library choice itself.
package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("config")

// EnvPrefix is the environment-variable prefix Bind registers with
// viper, matching the teacher's "STORJ_<FIELD>" convention adapted to
// this module's name.
const EnvPrefix = "MVNRESOLVER"

// Config is the full configuration surface of spec.md §6: checksum
// algorithm order, split-repository prefixes, connector thread count,
// HTTP transport settings, resume support, the repository-key function
// to use, the offline allow-lists, priority overrides, and filter base
// directories. Every field is bindable by viper via its `mapstructure`
// tag.
type Config struct {
	// ChecksumAlgorithms lists the checksum algorithms to verify, in the
	// order pkg/layout advertises them (spec.md §6 bullet 1).
	ChecksumAlgorithms []string `mapstructure:"checksum-algorithms"`

	// Split controls pkg/localrepo.Enhanced's optional directory split.
	SplitInstalledVsCached bool `mapstructure:"split-installed-vs-cached"`
	SplitReleaseVsSnapshot bool `mapstructure:"split-release-vs-snapshot"`
	SplitPerRemote         bool `mapstructure:"split-per-remote"`

	// TrackingBackend selects pkg/tracking's Backend: "file" (default)
	// or "bolt" for the bbolt-backed store (spec.md §6 [NEW]).
	TrackingBackend string `mapstructure:"tracking-backend"`
	TrackingBoltPath string `mapstructure:"tracking-bolt-path"`

	// ConnectorThreads bounds pkg/connector's parallel GET/PUT pool
	// (spec.md §4.H, default 5).
	ConnectorThreads int `mapstructure:"connector-threads"`

	// HTTP transport settings (spec.md §6 bullet for "HTTP headers,
	// connect/request timeouts, user-agent").
	HTTPHeaders        map[string]string `mapstructure:"http-headers"`
	HTTPUserAgent      string            `mapstructure:"http-user-agent"`
	HTTPConnectTimeout time.Duration     `mapstructure:"http-connect-timeout"`
	HTTPRequestTimeout time.Duration     `mapstructure:"http-request-timeout"`

	// ResumeSupported/ResumeThreshold gate partial-download resume
	// (spec.md §4.H step 2).
	ResumeSupported bool  `mapstructure:"resume-supported"`
	ResumeThreshold int64 `mapstructure:"resume-threshold"`

	// RepositoryKeyFunction names which remoterepo.KeyFunc to use:
	// "id" (remoterepo.NID, default) or "id-url-hash"
	// (remoterepo.NIDHurl).
	RepositoryKeyFunction string `mapstructure:"repository-key-function"`

	// OfflineProtocols/OfflineHosts are the allow-lists
	// pkg/transport.OfflineController consults (spec.md §6 bullet 3).
	OfflineProtocols []string `mapstructure:"offline-protocols"`
	OfflineHosts     []string `mapstructure:"offline-hosts"`

	// Priority overrides a capability implementation's natural
	// registration order in pkg/system.Registry; a string value of "nan"
	// or "disabled" disables that entry regardless of mode (spec.md §6
	// bullet 4, §9 resolved Open Question "NaN always disables").
	Priority map[string]string `mapstructure:"priority"`

	// FilterBaseDirs names base directories a caller-supplied
	// pkg/collect.Filter may consult (e.g. an exclusion list read from
	// disk); this module ships no such filter itself, since spec.md only
	// names the configuration key, not a concrete filter (§6).
	FilterBaseDirs []string `mapstructure:"filter-base-dirs"`
}

// Default returns the conventional defaults, matching
// pkg/transport.DefaultConfig and pkg/connector.New where they overlap.
func Default() Config {
	return Config{
		ChecksumAlgorithms:    []string{"SHA-1", "MD5"},
		TrackingBackend:       "file",
		ConnectorThreads:      5,
		HTTPUserAgent:         "maven-resolver-sub005",
		HTTPConnectTimeout:    10 * time.Second,
		HTTPRequestTimeout:    30 * time.Second,
		ResumeSupported:       true,
		ResumeThreshold:       1 << 20,
		RepositoryKeyFunction: "id",
	}
}

// Load reads configuration from Default(), then file (if non-empty),
// then environment variables prefixed with EnvPrefix, each overriding
// the one before. Load does not consult command-line flags.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, Error.Wrap(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Error.Wrap(err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("checksum-algorithms", d.ChecksumAlgorithms)
	v.SetDefault("tracking-backend", d.TrackingBackend)
	v.SetDefault("connector-threads", d.ConnectorThreads)
	v.SetDefault("http-user-agent", d.HTTPUserAgent)
	v.SetDefault("http-connect-timeout", d.HTTPConnectTimeout)
	v.SetDefault("http-request-timeout", d.HTTPRequestTimeout)
	v.SetDefault("resume-supported", d.ResumeSupported)
	v.SetDefault("resume-threshold", d.ResumeThreshold)
	v.SetDefault("repository-key-function", d.RepositoryKeyFunction)
}

// Bind registers cmd's persistent flags, with Default() values, and
// binds them into v, matching the teacher's cobra+viper wiring
// (pkg/process/exec_conf_test.go). Split prefixes, HTTP headers and
// priority overrides get no flag, and Bind sets up no environment
// lookup on v.
func Bind(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	d := Default()

	flags.StringSlice("checksum-algorithms", d.ChecksumAlgorithms, "checksum algorithms to verify, in order")
	flags.String("tracking-backend", d.TrackingBackend, `tracking store backend: "file" or "bolt"`)
	flags.String("tracking-bolt-path", "", "path to the bbolt database file when tracking-backend is bolt")
	flags.Int("connector-threads", d.ConnectorThreads, "parallel GET/PUT thread pool size")
	flags.String("http-user-agent", d.HTTPUserAgent, "User-Agent header sent on every HTTP request")
	flags.Duration("http-connect-timeout", d.HTTPConnectTimeout, "HTTP connect timeout")
	flags.Duration("http-request-timeout", d.HTTPRequestTimeout, "HTTP request timeout")
	flags.Bool("resume-supported", d.ResumeSupported, "allow resuming partial downloads")
	flags.Int64("resume-threshold", d.ResumeThreshold, "minimum partial size, in bytes, worth resuming")
	flags.String("repository-key-function", d.RepositoryKeyFunction, `repository key function: "id" or "id-url-hash"`)
	flags.StringSlice("offline-protocols", nil, "protocols allowed while offline")
	flags.StringSlice("offline-hosts", nil, "hosts allowed while offline")
	flags.StringSlice("filter-base-dirs", nil, "base directories a dependency filter may consult")

	_ = v.BindPFlags(flags)
}

// NaN is the sentinel priority value meaning "disabled", per the
// resolved Open Question in spec.md §9 "NaN always disables regardless
// of mode".
var NaN = math.NaN()

// ResolvePriority parses one Priority entry: "nan"/"disabled" (any
// case) maps to NaN; anything else parses as a float, defaulting to 0
// if it doesn't parse, matching an unrecognized-value tolerance
// consistent with checksum.ParsePolicy elsewhere in this module.
func ResolvePriority(raw string) float64 {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "nan", "disabled":
		return NaN
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}
