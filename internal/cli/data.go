package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/google/subcommands"
)

type salesCmd struct {
	env    *Env
	search string
}

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "units sold and estimated revenue per item" }
func (*salesCmd) Usage() string    { return "ledgerctl sales [-search <text>]\n" }

func (c *salesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Only rows whose item name contains this text.")
}

func (c *salesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rows := c.env.Service.Sales(c.search)
	if len(rows) == 0 {
		fmt.Fprintln(c.env.Out, "No sales data.")
		return subcommands.ExitSuccess
	}
	tw := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tUNITS\tEST. REVENUE\t")
	for _, r := range rows {
		rev := core.FormatMoney(r.Revenue)
		if rev == "" {
			rev = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", r.ItemName, r.Units, rev)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type dashboardCmd struct {
	env *Env
}

func (*dashboardCmd) Name() string             { return "dashboard" }
func (*dashboardCmd) Synopsis() string         { return "counts and low-stock alerts" }
func (*dashboardCmd) Usage() string            { return "ledgerctl dashboard\n" }
func (*dashboardCmd) SetFlags(_ *flag.FlagSet) {}

func (c *dashboardCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d := c.env.Service.Dashboard()
	out := c.env.Out
	fmt.Fprintf(out, "Items: %d  Low stock: %d  Orders: %d  Pending: %d  Delivered: %d\n",
		d.Stats.Items, d.Stats.LowStock, d.Stats.Orders, d.Stats.Pending, d.Stats.Delivered)
	if len(d.LowStock) == 0 {
		fmt.Fprintln(out, "No low-stock items.")
		return subcommands.ExitSuccess
	}
	for _, it := range d.LowStock {
		fmt.Fprintf(out, "Low stock: %s (Stock: %d, Threshold: %d)\n", it.DisplayName, it.Stock, it.Threshold)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	env    *Env
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write inventory, orders or sales as CSV" }
func (*exportCmd) Usage() string {
	return `ledgerctl export [-o <file>] inventory|orders|sales

  Writes CSV to stdout, or to <file>. "-o ." uses the dated default name.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("export: a view (inventory, orders, sales) is required")
	}
	view := f.Arg(0)
	text, err := c.env.Service.Export(view)
	if err != nil {
		return c.env.fail(err)
	}

	if c.output == "" {
		fmt.Fprintln(c.env.Out, text)
		return subcommands.ExitSuccess
	}
	path := c.output
	if path == "." {
		path = c.env.Service.ExportFilename(view)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return c.env.fail(fmt.Errorf("write export: %w", err))
	}
	fmt.Fprintf(c.env.Out, "Wrote %s\n", path)
	return subcommands.ExitSuccess
}

type importCmd struct {
	env *Env
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge an inventory CSV into the ledger" }
func (*importCmd) Usage() string {
	return `ledgerctl import <file|->

  The CSV needs name and stock columns; threshold and price are optional.
  Existing items gain the imported stock and take the other fields.
`
}
func (*importCmd) SetFlags(_ *flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("import: a file name or - for stdin is required")
	}

	var r io.Reader = c.env.In
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return c.env.fail(&core.ImportParseError{Reason: "open file", Err: err})
		}
		defer file.Close()
		r = file
	}

	res, err := c.env.Service.ImportInventory(cliContext(ctx), r, c.env.MaxImportSize)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "Imported %d items (%d new, %d merged)\n", res.Imported, res.Created, res.Merged)
	return subcommands.ExitSuccess
}

type resetCmd struct {
	env *Env
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete all items and orders" }
func (*resetCmd) Usage() string    { return "ledgerctl reset [-y]\n" }

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation.")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes && !c.env.confirm("Delete ALL inventory and orders?") {
		fmt.Fprintln(c.env.Out, "Aborted.")
		return subcommands.ExitSuccess
	}
	if err := c.env.Service.Reset(cliContext(ctx)); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintln(c.env.Out, "All data cleared.")
	return subcommands.ExitSuccess
}
