package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuhna-net/flashledger/internal/model"
)

const walletHeader = "id,owner_id,kind,amount,description,occurred_at,status\n"

func TestWalletParser_Parse(t *testing.T) {
	data, err := os.ReadFile("../../testdata/wallet_export.csv")
	require.NoError(t, err)

	p := &WalletParser{}
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, txns, 5)

	assert.Equal(t, "T1001", txns[0].ID)
	assert.Equal(t, "U1", txns[0].OwnerID)
	assert.Equal(t, model.KindDeposit, txns[0].Kind)
	assert.Equal(t, "250.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, model.StatusProcessed, txns[0].Status)

	assert.Equal(t, "Shipping fee for delivered shipment FE-2231", txns[1].Description)
	assert.True(t, txns[1].Amount.IsNegative())
	assert.Equal(t, 2026, txns[1].OccurredAt.Year())
}

func TestWalletParser_AssignsMissingID(t *testing.T) {
	data, err := os.ReadFile("../../testdata/wallet_export.csv")
	require.NoError(t, err)

	p := &WalletParser{}
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	// Fourth row has no id in the export.
	assert.NotEmpty(t, txns[3].ID)
	assert.NotEqual(t, "T1003", txns[3].ID)
}

func TestWalletParser_EmptyFile(t *testing.T) {
	p := &WalletParser{}
	txns, err := p.Parse(strings.NewReader(walletHeader))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestWalletParser_BadAmount(t *testing.T) {
	csv := walletHeader + "T1,U1,Fee,NOTANUMBER,desc,2026-02-01T08:15:00Z,Processed\n"
	p := &WalletParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestWalletParser_BadTimestamp(t *testing.T) {
	csv := walletHeader + "T1,U1,Fee,-4.00,desc,NOTATIME,Processed\n"
	p := &WalletParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing occurred_at")
}

func TestWalletParser_Format(t *testing.T) {
	p := &WalletParser{}
	assert.Equal(t, "wallet", p.Format())
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("wallet"))
	assert.NotNil(t, r.Get("WALLET"))
	assert.Nil(t, r.Get("unknown"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&WalletParser{})
	assert.Panics(t, func() { r.Register(&WalletParser{}) })
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export1.csv"), []byte(walletHeader), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "export1.csv", files[0].Name)
}

func TestScan_NoImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export1.csv"), []byte(walletHeader), 0o644))

	require.NoError(t, MarkProcessed(root, "export1.csv"))

	_, err := os.Stat(filepath.Join(root, "import", "processed", "export1.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "export1.csv"))
	assert.True(t, os.IsNotExist(err))
}
