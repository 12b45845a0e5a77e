package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Groups the engine's secrets in the OS keychain.
	KeyringService = "outreach"
)

func get(account, kind string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", fmt.Errorf("%s keyring account is empty", kind)
	}
	pw, err := keyring.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", fmt.Errorf("%s password not found in keychain for %q", kind, account)
}

func set(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func GetSMTPPassword(account string) (string, error) { return get(account, "SMTP") }
func SetSMTPPassword(account, pw string) error       { return set(account, pw) }

func GetIMAPPassword(account string) (string, error) { return get(account, "IMAP") }
func SetIMAPPassword(account, pw string) error       { return set(account, pw) }

func DeletePassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

func IMAPKeyringAccount(username, host string) string {
	return fmt.Sprintf("outreach:imap:%s@%s", username, host)
}

func SMTPKeyringAccount(username, host string) string {
	return fmt.Sprintf("outreach:smtp:%s@%s", username, host)
}

// SetGeminiAPIKey stores the evaluator key in the keychain.
func SetGeminiAPIKey(key string) error {
	return set("outreach:gemini", key)
}

// GeminiAPIKey reads the evaluator key from the named environment
// variable, falling back to the keychain.
func GeminiAPIKey(envName string) (string, error) {
	if envName == "" {
		envName = "GEMINI_API_KEY"
	}
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, nil
	}
	pw, err := keyring.Get(KeyringService, "outreach:gemini")
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", fmt.Errorf("gemini API key not set (env %s or keychain)", envName)
}
