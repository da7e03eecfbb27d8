package wallet_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofofimpact/poi/internal/wallet"
)

// Well-known development key and its address.
const (
	knownKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	knownAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	err := mgr.AddWatchOnly("ngo", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)

	w, err := mgr.Get("ngo")
	require.NoError(t, err)
	assert.Equal(t, "ngo", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.Equal(t, wallet.ChainVeChain, w.ChainType)
	assert.False(t, w.CanSign())
}

func TestAddWatchOnlyRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.Error(t, mgr.AddWatchOnly("bad", "0x1234"))
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w := &wallet.Wallet{Name: "dup", Address: "0x123...", Type: wallet.TypeWatchOnly}
	require.NoError(t, mgr.Add("dup", w))

	err := mgr.Add("dup", w)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	require.NoError(t, mgr.AddWithKey("signer", knownKey))

	w, err := mgr.Get("signer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, knownAddr, w.Address)
	assert.True(t, w.CanSign())
}

func TestAddWithKeyAcceptsUnprefixedKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("bare", strings.TrimPrefix(knownKey, "0x")))

	w, err := mgr.Get("bare")
	require.NoError(t, err)
	assert.Equal(t, knownAddr, w.Address)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestListWalletsSorted(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("w2", &wallet.Wallet{Address: "0x222...", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	mgr.Add("w1", &wallet.Wallet{Address: "0x111...", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	list := mgr.List()
	require.Len(t, list, 2)
	assert.Equal(t, "w1", list[0].Name)
	assert.Equal(t, "w2", list[1].Name)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	require.NoError(t, mgr.AddWithKey("gone", knownKey))
	w, _ := mgr.Get("gone")
	ref := w.KeyRef

	require.NoError(t, mgr.Remove("gone"))

	_, err := mgr.Get("gone")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.Remove("ghost"), wallet.ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("a", &wallet.Wallet{Address: "0xa", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	mgr.Add("b", &wallet.Wallet{Address: "0xb", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	assert.Nil(t, mgr.Default())
	require.NoError(t, mgr.SetDefault("b"))
	assert.Equal(t, "b", mgr.Default().Name)

	assert.ErrorIs(t, mgr.SetDefault("c"), wallet.ErrWalletNotFound)
}

func TestDefaultWalletWithSingleWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("only", &wallet.Wallet{Address: "0x1", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	require.NotNil(t, mgr.Default())
	assert.Equal(t, "only", mgr.Default().Name)
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, hexKey, err := mgr.Generate("fresh")
	require.NoError(t, err)

	assert.Equal(t, "fresh", w.Name)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, wallet.ChainVeChain, w.ChainType)
	assert.True(t, strings.HasPrefix(w.Address, "0x"))
	assert.Len(t, w.Address, 42)
	assert.NotEmpty(t, w.CreatedAt)

	assert.True(t, strings.HasPrefix(hexKey, "0x"))
	assert.Len(t, hexKey, 66)
}

func TestGenerateWalletDuplicateErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, _, err := mgr.Generate("dup")
	require.NoError(t, err)

	_, _, err = mgr.Generate("dup")
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestGenerateUniqueKeys(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, key1, err := mgr.Generate("g1")
	require.NoError(t, err)
	_, key2, err := mgr.Generate("g2")
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}

// ---------------------------------------------------------------------------
// ExportKey / Key
// ---------------------------------------------------------------------------

func TestExportKeyRoundTrip(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("exporter", knownKey))

	got, err := mgr.ExportKey("exporter")
	require.NoError(t, err)
	assert.Equal(t, knownKey, got)
}

func TestExportKeyNotFound(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.ExportKey("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestExportKeyWatchOnlyErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("watch", &wallet.Wallet{Address: "0x111...", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	_, err := mgr.ExportKey("watch")
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestKeyDetectsMismatchedStoredKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	require.NoError(t, mgr.AddWithKey("victim", knownKey))

	w, _ := mgr.Get("victim")
	w.Address = "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"

	_, err := mgr.Key("victim")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

// ---------------------------------------------------------------------------
// JSONStore
// ---------------------------------------------------------------------------

func TestJSONStorePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	first := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	require.NoError(t, first.AddWithKey("admin", knownKey))
	require.NoError(t, first.SetDefault("admin"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), strings.TrimPrefix(knownKey, "0x"), "keys stay out of the metadata file")

	second := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	w := second.Default()
	require.NotNil(t, w)
	assert.Equal(t, knownAddr, w.Address)

	got, err := second.ExportKey("admin")
	require.NoError(t, err)
	assert.Equal(t, knownKey, got)
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	s := wallet.NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
	ws, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))
	_, err := wallet.NewJSONStore(path).Load()
	assert.Error(t, err)
}
