package config

import "strings"

// Client configures palmrctl. Flags override these values.
type Client struct {
	ServerURL   string
	Token       string
	Login       string
	Password    string
	Concurrency int
	MaxFileSize int64
}

func LoadClient() Client {
	return Client{
		ServerURL:   strings.TrimRight(getEnv("PALMR_URL", "http://localhost:3333"), "/"),
		Token:       getEnv("PALMR_TOKEN", ""),
		Login:       getEnv("PALMR_LOGIN", ""),
		Password:    getEnv("PALMR_PASSWORD", ""),
		Concurrency: getEnvInt("PALMR_CONCURRENCY", 3),
		MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE_MB", 1024)) << 20,
	}
}
