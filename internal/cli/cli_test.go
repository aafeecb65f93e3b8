package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/JonMunkholm/stockledger/internal/storage"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	env *Env
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	seq := 0
	svc, err := core.NewService(context.Background(), storage.NewMemoryStore(),
		core.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
		core.WithIDGenerator(func() string { seq++; return fmt.Sprintf("o%d", seq) }),
	)
	require.NoError(t, err)

	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.env = &Env{Service: svc, Out: h.out, Err: h.err, In: strings.NewReader(""), MaxImportSize: 1 << 20}
	return h
}

// run executes one command line against a fresh commander.
func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	h.out.Reset()
	h.err.Reset()

	fs := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "ledgerctl")
	cdr.Output = &bytes.Buffer{}
	cdr.Error = &bytes.Buffer{}
	Register(cdr, h.env)
	require.NoError(t, fs.Parse(args))
	return cdr.Execute(context.Background())
}

func TestAddAndItems(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "add", "-name", "Pen", "-stock", "3", "-price", "1.5"))
	assert.Contains(t, h.out.String(), "Added Pen: stock 3")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "add", "-name", "pen", "-stock", "4", "-threshold", "10"))
	assert.Contains(t, h.out.String(), "Updated pen: stock 7")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "items", "-low"))
	assert.Contains(t, h.out.String(), "pen (low)")

	it, ok := h.env.Service.FindItem("pen")
	require.True(t, ok)
	assert.Equal(t, 10, it.Threshold)
	assert.Nil(t, it.Price)
}

func TestAdd_ValidationError(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "add", "-name", "Pen", "-stock", "0"))
	assert.Contains(t, h.err.String(), "VAL001")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "add", "-name", "Pen", "-stock", "1", "-price", "-2"))
	assert.Contains(t, h.err.String(), "VAL001")
}

func TestEditRenamesOrders(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "5")
	h.run(t, "place", "-item", "pen", "-qty", "2")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "edit", "-name", "Marker", "-stock", "9", "pen"))
	assert.Contains(t, h.out.String(), "Saved Marker (1 orders updated)")

	orders := h.env.Service.Orders(core.OrderQuery{})
	require.Len(t, orders, 1)
	assert.Equal(t, "marker", orders[0].ItemKey)
	assert.Equal(t, "Marker", orders[0].ItemName)

	assert.Equal(t, subcommands.ExitUsageError, h.run(t, "edit", "-stock", "1"))
}

func TestEditKeepsOmittedFields(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "40", "-threshold", "3", "-price", "2.50")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "edit", "-name", "Blue Pen", "pen"))
	it, ok := h.env.Service.FindItem("blue pen")
	require.True(t, ok)
	assert.Equal(t, "Blue Pen", it.DisplayName)
	assert.Equal(t, 40, it.Stock)
	assert.Equal(t, 3, it.Threshold)
	assert.Equal(t, "2.50", core.FormatMoney(it.Price))

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "edit", "-stock", "12", "blue pen"))
	it, _ = h.env.Service.FindItem("blue pen")
	assert.Equal(t, "Blue Pen", it.DisplayName)
	assert.Equal(t, 12, it.Stock)
	assert.Equal(t, 3, it.Threshold)
	assert.Equal(t, "2.50", core.FormatMoney(it.Price))

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "edit", "-price", "", "-threshold", "0", "blue pen"))
	it, _ = h.env.Service.FindItem("blue pen")
	assert.Equal(t, 12, it.Stock)
	assert.Equal(t, 0, it.Threshold)
	assert.Nil(t, it.Price)

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "edit", "-stock", "1", "nope"))
	assert.Contains(t, h.err.String(), "INV002")
}

func TestOrderCommands(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "5", "-price", "2")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "place", "-item", "PEN", "-qty", "3"))
	assert.Contains(t, h.out.String(), "Placed order o1: 3 x Pen")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "place", "-item", "pen", "-qty", "3"))
	assert.Contains(t, h.err.String(), "Available: 2")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "toggle", "o1"))
	assert.Contains(t, h.out.String(), "now Delivered")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "orders", "-status", "delivered"))
	assert.Contains(t, h.out.String(), "o1")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "sales"))
	assert.Contains(t, h.out.String(), "6.00")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "toggle", "nope"))
	assert.Contains(t, h.err.String(), "ORD002")
}

func TestCancelConfirmation(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "5")
	h.run(t, "place", "-item", "pen", "-qty", "2")

	h.env.In = strings.NewReader("n\n")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "cancel", "o1"))
	assert.Contains(t, h.out.String(), "Aborted.")
	_, ok := h.env.Service.FindOrder("o1")
	assert.True(t, ok)

	h.env.In = strings.NewReader("yes\n")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "cancel", "o1"))
	assert.Contains(t, h.out.String(), "2 units returned")
	it, _ := h.env.Service.FindItem("pen")
	assert.Equal(t, 5, it.Stock)
}

func TestRemoveAndReset(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "5")
	h.run(t, "add", "-name", "Pad", "-stock", "5")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "remove", "-y", "Pen"))
	assert.Contains(t, h.out.String(), "Removed Pen")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "remove", "-y", "Pen"))
	assert.Contains(t, h.err.String(), "INV002")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "reset", "-y"))
	assert.Empty(t, h.env.Service.Items(core.InventoryQuery{}))
}

func TestExportImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen, blue", "-stock", "5", "-price", "1.25")
	h.run(t, "add", "-name", "Pad", "-stock", "2", "-threshold", "0")

	dir := t.TempDir()
	path := filepath.Join(dir, "inv.csv")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "export", "-o", path, "inventory"))

	h.run(t, "reset", "-y")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "import", path))
	assert.Contains(t, h.out.String(), "Imported 2 items (2 new, 0 merged)")

	it, ok := h.env.Service.FindItem("pen, blue")
	require.True(t, ok)
	assert.Equal(t, 5, it.Stock)
	assert.Equal(t, "1.25", core.FormatMoney(it.Price))
	pad, _ := h.env.Service.FindItem("pad")
	assert.Equal(t, 0, pad.Threshold)
}

func TestImportStdinAndFailures(t *testing.T) {
	h := newHarness(t)

	h.env.In = strings.NewReader("name,stock\nCup,4\n")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "import", "-"))
	assert.Contains(t, h.out.String(), "1 new")

	h.env.In = strings.NewReader("price\n1\n")
	assert.Equal(t, subcommands.ExitFailure, h.run(t, "import", "-"))
	assert.Contains(t, h.err.String(), "IMP001")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "import", filepath.Join(t.TempDir(), "missing.csv")))
	assert.Contains(t, h.err.String(), "IMP002")
}

func TestExportStdoutAndDefaultName(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "1")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "export", "sales"))
	assert.Equal(t, "item,units_sold,est_revenue\n", h.out.String())

	assert.Equal(t, subcommands.ExitFailure, h.run(t, "export", "bogus"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "export", "-o", ".", "orders"))
	data, err := os.ReadFile("stockledger_orders_20240301.csv")
	require.NoError(t, err)
	assert.Equal(t, "date,item,qty,status", string(data))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-name", "Pen", "-stock", "1")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, "dashboard"))
	assert.Contains(t, h.out.String(), "Items: 1  Low stock: 1")
	assert.Contains(t, h.out.String(), "Low stock: Pen (Stock: 1, Threshold: 5)")
}
