package config

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pouriya/restcommander-sub000/command"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 1995
	DefaultHTTPBasePath = "/"
	DefaultTokenTimeout = 604800
	DefaultUsername     = "admin"
	// CommandLine is reported as the configuration filename when no file was loaded.
	CommandLine = "<COMMANDLINE>"
)

type Server struct {
	Host                 string   `yaml:"host" toml:"host" json:"host"`
	Port                 int      `yaml:"port" toml:"port" json:"port"`
	HTTPBasePath         string   `yaml:"http_base_path" toml:"http_base_path" json:"http_base_path"`
	Username             string   `yaml:"username" toml:"username" json:"username"`
	PasswordFile         string   `yaml:"password_file" toml:"password_file" json:"password_file,omitempty"`
	PasswordSHA512       string   `yaml:"password_sha512" toml:"password_sha512" json:"-"`
	TLSCertFile          string   `yaml:"tls_cert_file" toml:"tls_cert_file" json:"tls_cert_file,omitempty"`
	TLSKeyFile           string   `yaml:"tls_key_file" toml:"tls_key_file" json:"tls_key_file,omitempty"`
	CaptchaFile          string   `yaml:"captcha_file" toml:"captcha_file" json:"captcha_file,omitempty"`
	CaptchaCaseSensitive bool     `yaml:"captcha_case_sensitive" toml:"captcha_case_sensitive" json:"captcha_case_sensitive"`
	IPWhitelist          []string `yaml:"ip_whitelist" toml:"ip_whitelist" json:"ip_whitelist,omitempty"`
	APIToken             string   `yaml:"api_token" toml:"api_token" json:"-"`
	TokenTimeout         int      `yaml:"token_timeout" toml:"token_timeout" json:"token_timeout"`
}

// TLS reports whether HTTPS is configured.
func (s *Server) TLS() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// Address returns host:port.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// TokenTTL returns token_timeout as a duration.
func (s *Server) TokenTTL() time.Duration {
	return time.Duration(s.TokenTimeout) * time.Second
}

type Commands struct {
	RootDirectory string `yaml:"root_directory" toml:"root_directory" json:"root_directory"`
	// Configuration is exported to every command as options.
	Configuration map[string]interface{} `yaml:"configuration" toml:"configuration" json:"configuration,omitempty"`
}

type Logging struct {
	LevelName string `yaml:"level_name" toml:"level_name" json:"level_name"`
	// Report is "off", "stdout", "stderr" or a file path for audit records.
	Report string `yaml:"report" toml:"report" json:"report"`
}

type WWW struct {
	StaticDirectory string            `yaml:"static_directory" toml:"static_directory" json:"static_directory,omitempty"`
	Enabled         bool              `yaml:"enabled" toml:"enabled" json:"enabled"`
	Configuration   map[string]string `yaml:"configuration" toml:"configuration" json:"configuration,omitempty"`
}

type Config struct {
	Server   Server   `yaml:"server" toml:"server" json:"server"`
	Commands Commands `yaml:"commands" toml:"commands" json:"commands"`
	Logging  Logging  `yaml:"logging" toml:"logging" json:"logging"`
	WWW      WWW      `yaml:"www" toml:"www" json:"www"`
	// Filename is the location the configuration was loaded from.
	Filename string `yaml:"-" toml:"-" json:"-"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	cwd, _ := os.Getwd()
	return &Config{
		Server: Server{
			Host:         DefaultHost,
			Port:         DefaultPort,
			HTTPBasePath: DefaultHTTPBasePath,
			TokenTimeout: DefaultTokenTimeout,
		},
		Commands: Commands{RootDirectory: cwd},
		Logging:  Logging{LevelName: "info", Report: "off"},
		WWW:      WWW{Enabled: true},
	}
}

// Load reads a YAML or TOML file (by extension) from a local path or URL on
// top of the defaults.
func Load(ctx context.Context, location string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", location, err)
	}
	cfg, err := Parse(data, filepath.Ext(location))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", location, err)
	}
	cfg.Filename = location
	return cfg, nil
}

// Parse decodes data on top of the defaults; ext selects TOML when ".toml".
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	if strings.EqualFold(ext, ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values and resolves the password file. It may adjust the
// configuration: a password without a username selects DefaultUsername.
func (c *Config) Validate(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	server := &c.Server
	if net.ParseIP(server.Host) == nil {
		return fmt.Errorf("could not parse hostname %q", server.Host)
	}
	if server.Port <= 0 || server.Port > 65535 {
		return fmt.Errorf("invalid port %d", server.Port)
	}
	if !strings.HasPrefix(server.HTTPBasePath, "/") {
		return fmt.Errorf("invalid HTTP base-path %q: should contain '/' at the start", server.HTTPBasePath)
	}
	if !strings.HasSuffix(server.HTTPBasePath, "/") {
		return fmt.Errorf("invalid HTTP base-path %q: should contain '/' at the end", server.HTTPBasePath)
	}
	switch {
	case server.Username != "" && server.PasswordSHA512 == "" && server.PasswordFile == "":
		return fmt.Errorf("configuration contains `username` but `password_sha512` or `password_file` field is not set")
	case server.Username == "" && (server.PasswordSHA512 != "" || server.PasswordFile != ""):
		logger.Warn("configuration contains a password but `username` field is not set", "username", DefaultUsername)
		server.Username = DefaultUsername
	}
	if server.PasswordFile != "" {
		password, err := afs.New().DownloadWithURL(ctx, server.PasswordFile)
		if err != nil {
			return fmt.Errorf("could not read password file %q: %w", server.PasswordFile, err)
		}
		hash := strings.TrimSpace(string(password))
		if hash == "" {
			return fmt.Errorf("password file %q is empty", server.PasswordFile)
		}
		if server.PasswordSHA512 != "" {
			logger.Warn("both `password_sha512` and `password_file` fields are set, ignoring `password_sha512`")
		}
		server.PasswordSHA512 = hash
	}
	switch {
	case server.TLSCertFile != "" && server.TLSKeyFile != "":
		if !isFile(server.TLSCertFile) {
			return fmt.Errorf("TLS cert file %q is not found", server.TLSCertFile)
		}
		if !isFile(server.TLSKeyFile) {
			return fmt.Errorf("TLS key file %q is not found", server.TLSKeyFile)
		}
	case server.TLSKeyFile != "":
		return fmt.Errorf("TLS key file is set but TLS cert file is not set")
	case server.TLSCertFile != "":
		return fmt.Errorf("TLS cert file is set but TLS key file is not set")
	}
	if server.TokenTimeout <= 0 {
		server.TokenTimeout = DefaultTokenTimeout
	}
	if _, err := c.Logging.Level(); err != nil {
		return err
	}
	if dir := c.WWW.StaticDirectory; dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("static directory %q does not exist", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("static directory %q is not a directory", dir)
		}
	}
	if _, err := command.InputOf(c.Commands.Configuration); err != nil {
		return fmt.Errorf("invalid commands configuration: %w", err)
	}
	return nil
}

// Constants returns the options every command receives: the exported
// server settings followed by commands.configuration entries.
func (c *Config) Constants() command.Input {
	host := c.Server.Host
	if host == "0.0.0.0" {
		host = DefaultHost
	}
	filename := c.Filename
	if filename == "" {
		filename = CommandLine
	}
	level, _ := c.Logging.Name()
	ret := command.Input{
		"RESTCOMMANDER_CONFIG_SERVER_HOST":             command.String(host),
		"RESTCOMMANDER_CONFIG_SERVER_PORT":             command.Integer(int64(c.Server.Port)),
		"RESTCOMMANDER_CONFIG_SERVER_HTTP_BASE_PATH":   command.String(c.Server.HTTPBasePath),
		"RESTCOMMANDER_CONFIG_SERVER_USERNAME":         command.String(c.Server.Username),
		"RESTCOMMANDER_CONFIG_SERVER_API_TOKEN":        command.String(c.Server.APIToken),
		"RESTCOMMANDER_CONFIG_SERVER_HTTPS":            command.Bool(c.Server.TLS()),
		"RESTCOMMANDER_CONFIG_COMMANDS_ROOT_DIRECTORY": command.String(c.Commands.RootDirectory),
		"RESTCOMMANDER_CONFIG_LOGGING_LEVEL_NAME":      command.String(level),
		"RESTCOMMANDER_CONFIGURATION_FILENAME":         command.String(filename),
	}
	if extra, err := command.InputOf(c.Commands.Configuration); err == nil {
		ret.Merge(extra)
	}
	return ret
}

func isFile(location string) bool {
	info, err := os.Stat(location)
	return err == nil && info.Mode().IsRegular()
}
