// Package config loads the server's HCL configuration file and its secrets
// from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerSettings
	Chat    ChatSettings
	Wallet  WalletSettings
	Betting BettingSettings
}

// ServerSettings contains the push-transport listener configuration.
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	StaticDir string `hcl:"static_dir,optional"`
}

// ChatSettings names the bot account and the channel it watches.
type ChatSettings struct {
	Username string `hcl:"username,optional"`
	Channel  string `hcl:"channel,optional"`
}

// WalletSettings points at the external currency service.
type WalletSettings struct {
	BaseURL   string `hcl:"base_url,optional"`
	TimeoutMs int    `hcl:"timeout_ms,optional"`
}

// BettingSettings tunes round behaviour.
type BettingSettings struct {
	// AllowRebet lets a later bet replace a participant's earlier one
	// instead of being rejected.
	AllowRebet bool `hcl:"allow_rebet,optional"`
}

// fileConfig is the decode target: every block is optional in the file.
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Chat    *ChatSettings    `hcl:"chat,block"`
	Wallet  *WalletSettings  `hcl:"wallet,block"`
	Betting *BettingSettings `hcl:"betting,block"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   "0.0.0.0",
			Port:      3000,
			StaticDir: "public",
		},
		Wallet: WalletSettings{
			BaseURL:   "https://wapi.wizebot.tv/api",
			TimeoutMs: 10000,
		},
	}
}

// Load reads the HCL configuration file. A missing file yields the defaults;
// missing blocks and fields fall back to them individually.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &Config{}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Chat != nil {
		cfg.Chat = *raw.Chat
	}
	if raw.Wallet != nil {
		cfg.Wallet = *raw.Wallet
	}
	if raw.Betting != nil {
		cfg.Betting = *raw.Betting
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = def.Server.StaticDir
	}
	if cfg.Wallet.BaseURL == "" {
		cfg.Wallet.BaseURL = def.Wallet.BaseURL
	}
	if cfg.Wallet.TimeoutMs == 0 {
		cfg.Wallet.TimeoutMs = def.Wallet.TimeoutMs
	}
	if cfg.Chat.Channel == "" {
		cfg.Chat.Channel = cfg.Chat.Username
	}
}

// ListenAddr returns the host:port the push transport binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// WalletTimeout returns the bound on one currency-service call.
func (c *Config) WalletTimeout() time.Duration {
	return time.Duration(c.Wallet.TimeoutMs) * time.Millisecond
}
