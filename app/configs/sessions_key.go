package configs

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
	CSRFKey []byte
}

// LoadSessionKeys decodes the base64 keys from env. In development missing keys
// are replaced by random ones, which invalidates sessions on every restart.
func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" || env.AppEncKey == "" || env.CSRFKey == "" {
		if env.IsProduction() {
			return nil, fmt.Errorf("APP_AUTH_KEY, APP_ENC_KEY and CSRF_KEY must be set in production")
		}
		return RandomSessionKeys(), nil
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
	}
	csrfKey, err := base64.URLEncoding.DecodeString(env.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
	}

	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding. Must be 16, 24, or 32 bytes for AES encryption", len(encKey))
	}
	if len(csrfKey) != 32 {
		return nil, fmt.Errorf("CSRF_KEY has invalid length %d after decoding. Must be 32 bytes", len(csrfKey))
	}

	return &SessionKeys{
		AuthKey: authKey,
		EncKey:  encKey,
		CSRFKey: csrfKey,
	}, nil
}

func RandomSessionKeys() *SessionKeys {
	return &SessionKeys{
		AuthKey: securecookie.GenerateRandomKey(64),
		EncKey:  securecookie.GenerateRandomKey(32),
		CSRFKey: securecookie.GenerateRandomKey(32),
	}
}

// GenerateAndPrintSessionKeys prints fresh keys and merges them into envFilePath,
// keeping any other settings already there.
func GenerateAndPrintSessionKeys(envFilePath string) error {
	fmt.Println("Generating new session keys...")

	keys := RandomSessionKeys()
	if keys.AuthKey == nil || keys.EncKey == nil || keys.CSRFKey == nil {
		return fmt.Errorf("error: could not generate keys")
	}

	authKeyBase64 := base64.URLEncoding.EncodeToString(keys.AuthKey)
	encKeyBase64 := base64.URLEncoding.EncodeToString(keys.EncKey)
	csrfKeyBase64 := base64.URLEncoding.EncodeToString(keys.CSRFKey)

	fmt.Println("\n================================================")
	fmt.Println("Generated keys:")
	fmt.Printf("APP_AUTH_KEY=%s\n", authKeyBase64)
	fmt.Printf("APP_ENC_KEY=%s\n", encKeyBase64)
	fmt.Printf("CSRF_KEY=%s\n", csrfKeyBase64)
	fmt.Println("================================================")

	fullPath, err := filepath.Abs(envFilePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", envFilePath, err)
	}

	values := map[string]string{}
	if _, err := os.Stat(envFilePath); err == nil {
		if values, err = godotenv.Read(envFilePath); err != nil {
			return fmt.Errorf("failed to read existing %s: %w", envFilePath, err)
		}
	}
	values["APP_AUTH_KEY"] = authKeyBase64
	values["APP_ENC_KEY"] = encKeyBase64
	values["CSRF_KEY"] = csrfKeyBase64

	if err := godotenv.Write(values, envFilePath); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", envFilePath, err)
	}

	fmt.Printf("\nKeys have been written to '%s'.\n", fullPath)
	fmt.Println("If you regenerate, existing user sessions will be invalidated.")

	return nil
}
