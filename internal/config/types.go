package config

// Config is the full persisted configuration for one WebDAV endpoint.
type Config struct {
	Version  string   `mapstructure:"version"`
	Server   Server   `mapstructure:"server"`
	Download Download `mapstructure:"download"`
}

// Server identifies the WebDAV endpoint and its credentials. The app
// password is never held in plaintext in the config file.
type Server struct {
	URL         string        `mapstructure:"url"`
	Username    string        `mapstructure:"username"`
	AppPassword EncryptedData `mapstructure:"app_password"`
}

// EncryptedData is an AES-256-GCM-encrypted secret plus the parameters
// needed to decrypt it on this machine.
type EncryptedData struct {
	Encrypted string `mapstructure:"encrypted"`
	Salt      string `mapstructure:"salt"`
	Nonce      string `mapstructure:"nonce"`
	Algorithm string `mapstructure:"algorithm"`
}

// Download holds the settings governing the downloader's behavior.
type Download struct {
	MaxRetries          int      `mapstructure:"max_retries"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds"`
	ChunkSizeMB         int      `mapstructure:"chunk_size_mb"`
	MaxConcurrentChunks int      `mapstructure:"max_concurrent_chunks"`
	VerifySSL           bool     `mapstructure:"verify_ssl"`
	ExcludePatterns     []string `mapstructure:"exclude_patterns,omitempty"`
}

// Constants for default configuration values.
const (
	DefaultVersion             = "1.0"
	DefaultMaxRetries          = 3
	DefaultTimeoutSeconds      = 30
	DefaultChunkSizeMB         = 4
	DefaultMaxConcurrentChunks = 4
	DefaultVerifySSL           = true
	EncryptionAlgorithm        = "aes-256-gcm"
	PBKDF2Iterations           = 100000
	SaltSize                   = 32
	NonceSize                  = 12
)
