package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port      int            `json:"port"`
	Env       string         `json:"env"`
	Pepper    string         `json:"pepper"`
	HMACKey   string         `json:"hmac_key"`
	CSRFKey   string         `json:"csrf_key"`
	ClientURL string         `json:"client_url"`
	CacheSize int            `json:"cache_size"`
	Github    OAuthConfig    `json:"github"`
	Database  PostgresConfig `json:"database"`
}

type OAuthConfig struct {
	ID          string `json:"id"`
	Secret      string `json:"secret"`
	RedirectURL string `json:"redirect_url"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:      1111,
		Env:       "dev",
		Pepper:    "secret-random-string",
		HMACKey:   "secret-hmac-key",
		CSRFKey:   "32-byte-long-auth-key-for-csrf!!",
		ClientURL: "http://localhost:3000",
		CacheSize: 256,
		Database:  DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "chatter",
	}
}

// LoadConfig loads configuration from a .config.json file. Without one,
// it falls back to the default dev setup, unless we're in production, in
// which case the file is required. Environment variables override both,
// so secrets can stay out of the file.
func LoadConfig(isProd bool) Config {
	c := DefaultConfig()
	f, err := os.Open(".config.json")
	if err != nil {
		if isProd {
			panic(".config.json is required in production")
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&c); err != nil {
			panic(err)
		}
		fmt.Println("Successfully loaded .config.json")
	}
	c.applyEnv()
	return c
}

func (c *Config) applyEnv() {
	setString(&c.Env, "CHATTER_ENV")
	setString(&c.Pepper, "CHATTER_PEPPER")
	setString(&c.HMACKey, "CHATTER_HMAC_KEY")
	setString(&c.CSRFKey, "CHATTER_CSRF_KEY")
	setString(&c.ClientURL, "CHATTER_CLIENT_URL")
	setString(&c.Github.ID, "CHATTER_GITHUB_ID")
	setString(&c.Github.Secret, "CHATTER_GITHUB_SECRET")
	setString(&c.Github.RedirectURL, "CHATTER_GITHUB_REDIRECT_URL")
	setString(&c.Database.Host, "CHATTER_DB_HOST")
	setString(&c.Database.User, "CHATTER_DB_USER")
	setString(&c.Database.Password, "CHATTER_DB_PASSWORD")
	setString(&c.Database.Name, "CHATTER_DB_NAME")
	setInt(&c.Port, "CHATTER_PORT")
	setInt(&c.Database.Port, "CHATTER_DB_PORT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
