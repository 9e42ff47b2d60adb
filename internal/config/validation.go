package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateConfig validates the entire configuration structure.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateVersion(config.Version); err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}

	if config.Server.URL != "" {
		if err := ValidateServer(config.Server); err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
	}

	if err := ValidateDownload(config.Download); err != nil {
		return fmt.Errorf("invalid download settings: %w", err)
	}

	return nil
}

// ValidateVersion validates the configuration version.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	return nil
}

// ValidateServer validates the server endpoint and credentials. The
// scheme is deliberately not restricted to HTTPS: certificate/TLS policy
// is left to the caller's *http.Client, not enforced here.
func ValidateServer(server Server) error {
	if err := ValidateServerURL(server.URL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if err := ValidateUsername(server.Username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	if server.AppPassword.Encrypted != "" {
		if err := ValidateEncryptedData(server.AppPassword); err != nil {
			return fmt.Errorf("invalid app password: %w", err)
		}
	}

	return nil
}

// ValidateServerURL validates the WebDAV server base URL.
func ValidateServerURL(serverURL string) error {
	if serverURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("server URL must use http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("server URL must have a valid host")
	}

	return nil
}

// ValidateUsername validates the username format.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if strings.Contains(username, ":") {
		return fmt.Errorf("username cannot contain ':' character")
	}

	if len(username) > 255 {
		return fmt.Errorf("username too long (max 255 characters)")
	}

	return nil
}

// ValidateEncryptedData validates the encrypted password structure.
func ValidateEncryptedData(data EncryptedData) error {
	if data.Encrypted == "" {
		return fmt.Errorf("encrypted data cannot be empty")
	}
	if data.Salt == "" {
		return fmt.Errorf("salt cannot be empty")
	}
	if data.Nonce == "" {
		return fmt.Errorf("nonce cannot be empty")
	}
	if data.Algorithm != EncryptionAlgorithm {
		return fmt.Errorf("unsupported encryption algorithm: %s", data.Algorithm)
	}
	return nil
}

// ValidateExcludePattern validates a gitignore-style exclude pattern used
// to filter listings and downloads.
func ValidateExcludePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("exclude pattern cannot be empty")
	}

	dangerousPatterns := []string{"../", "..\\", "/../"}
	for _, dangerous := range dangerousPatterns {
		if strings.Contains(pattern, dangerous) {
			return fmt.Errorf("exclude pattern contains potentially dangerous traversal: %s", pattern)
		}
	}

	return nil
}

// ValidateDownload validates the download settings, treating zero values
// as "use the default" rather than rejecting them.
func ValidateDownload(d Download) error {
	if d.MaxRetries < 0 || d.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 0 and 10")
	}
	if d.TimeoutSeconds != 0 && (d.TimeoutSeconds < 1 || d.TimeoutSeconds > 600) {
		return fmt.Errorf("timeout_seconds must be between 1 and 600")
	}
	if d.ChunkSizeMB != 0 && (d.ChunkSizeMB < 1 || d.ChunkSizeMB > 1024) {
		return fmt.Errorf("chunk_size_mb must be between 1 and 1024")
	}
	if d.MaxConcurrentChunks != 0 && (d.MaxConcurrentChunks < 1 || d.MaxConcurrentChunks > 64) {
		return fmt.Errorf("max_concurrent_chunks must be between 1 and 64")
	}
	for _, pattern := range d.ExcludePatterns {
		if err := ValidateExcludePattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}
