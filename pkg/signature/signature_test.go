package signature

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedhavyas/go-subkey"
)

func devSigner(t *testing.T) *KeypairSigner {
	t.Helper()
	keypair, err := sr25519.NewKeypairFromMnenomic(subkey.DevPhrase, "")
	require.NoError(t, err)
	signer, err := NewSigner(keypair)
	require.NoError(t, err)
	return signer
}

func TestSignerRoundTrip(t *testing.T) {
	keypair, err := sr25519.GenerateKeypair()
	require.NoError(t, err)
	signer, err := NewSigner(keypair)
	require.NoError(t, err)

	sig, err := signer.Sign("Hello World")
	require.NoError(t, err)
	assert.Equal(t, "0x", sig[:2])
	assert.Len(t, sig, 130)

	ok, err := NewVerifier().Verify("Hello World", sig, signer.Hotkey())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("Hello World!", sig, signer.Hotkey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignerIsNonDeterministic(t *testing.T) {
	signer := devSigner(t)

	sig1, err := signer.Sign("consistent message")
	require.NoError(t, err)
	sig2, err := signer.Sign("consistent message")
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig2)

	for _, sig := range []string{sig1, sig2} {
		ok, err := Verify("consistent message", sig, signer.Hotkey())
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestNewSignerNilKeypair(t *testing.T) {
	_, err := NewSigner(nil)
	assert.Error(t, err)

	_, err = (&KeypairSigner{}).Sign("x")
	assert.Error(t, err)
}

func TestRequestMessage(t *testing.T) {
	signer := devSigner(t)
	body := []byte(`{"roles":["user"],"messages":["hi"]}`)
	now := time.Now()

	msg := RequestMessage(signer.Hotkey(), now.UnixNano(), body)
	require.NoError(t, CheckRequestMessage(msg, signer.Hotkey(), body, now))

	t.Run("tampered body", func(t *testing.T) {
		assert.Error(t, CheckRequestMessage(msg, signer.Hotkey(), []byte("{}"), now))
	})
	t.Run("other hotkey", func(t *testing.T) {
		assert.Error(t, CheckRequestMessage(msg, "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ", body, now))
	})
	t.Run("expired", func(t *testing.T) {
		assert.Error(t, CheckRequestMessage(msg, signer.Hotkey(), body, now.Add(MaxMessageAge+time.Second)))
	})
	t.Run("malformed", func(t *testing.T) {
		assert.Error(t, CheckRequestMessage("nope", signer.Hotkey(), body, now))
		assert.Error(t, CheckRequestMessage(signer.Hotkey()+".abc.00", signer.Hotkey(), body, now))
	})
}

func TestLoadKeypair(t *testing.T) {
	dir := t.TempDir()
	hotkeyDir := filepath.Join(dir, "wallets", "default", "hotkeys")
	require.NoError(t, os.MkdirAll(hotkeyDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(hotkeyDir, "validator"),
		[]byte(`{"secretPhrase":"`+subkey.DevPhrase+`"}`),
		0o600,
	))

	keypair, err := LoadKeypair(WalletPaths{BittensorDir: dir, Hotkey: "validator"})
	require.NoError(t, err)
	assert.Equal(t, devSigner(t).Hotkey(), ToSs58Address(keypair))

	_, err = LoadKeypair(WalletPaths{BittensorDir: dir, Hotkey: "missing"})
	assert.Error(t, err)

	_, err = LoadKeypair(WalletPaths{BittensorDir: dir})
	assert.Error(t, err)
}

func TestLoadMnemonicMissingPhrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotkey")
	require.NoError(t, os.WriteFile(path, []byte(`{"accountId":"0x00"}`), 0o600))

	_, err := LoadMnemonic(path)
	assert.Error(t, err)
}
