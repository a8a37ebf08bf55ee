package signature

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// WalletPaths locates a Bittensor hotkey file.
type WalletPaths struct {
	BittensorDir string
	Coldkey      string
	Hotkey       string
}

// Path returns <dir>/wallets/<coldkey>/hotkeys/<hotkey> with ~ expanded.
func (w WalletPaths) Path() (string, error) {
	dir := w.BittensorDir
	if dir == "" {
		dir = DefaultBittensorDir
	}
	coldkey := w.Coldkey
	if coldkey == "" {
		coldkey = DefaultWalletColdkey
	}
	if w.Hotkey == "" {
		return "", fmt.Errorf("hotkey name is empty")
	}

	dir, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wallets", coldkey, "hotkeys", w.Hotkey), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}

// LoadMnemonic reads the secretPhrase field of a Bittensor key file.
func LoadMnemonic(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read keypair file")
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var keyfile struct {
		SecretPhrase *string `json:"secretPhrase"`
	}
	if err := sonic.Unmarshal(data, &keyfile); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse keypair JSON")
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}
	if keyfile.SecretPhrase == nil {
		return "", fmt.Errorf("secretPhrase not found in JSON")
	}
	return *keyfile.SecretPhrase, nil
}

func LoadKeypair(paths WalletPaths) (*sr25519.Keypair, error) {
	path, err := paths.Path()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Str("hotkey_name", paths.Hotkey).Msg("Loading keypair from hotkey path")

	mnemonic, err := LoadMnemonic(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed phrase: %w", err)
	}

	keypair, err := sr25519.NewKeypairFromMnenomic(mnemonic, "")
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to create keypair from seed phrase")
		return nil, fmt.Errorf("failed to create keypair from seed phrase: %w", err)
	}
	return keypair, nil
}
