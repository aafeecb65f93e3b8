package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/google/subcommands"
)

type itemsCmd struct {
	env    *Env
	search string
	sort   string
	low    bool
}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "list inventory items" }
func (*itemsCmd) Usage() string {
	return `ledgerctl items [-search <text>] [-sort name_asc|name_desc|stock_asc|stock_desc] [-low]

  Lists items with stock, threshold and price. Low-stock items are flagged.
`
}

func (c *itemsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Only items whose name contains this text.")
	f.StringVar(&c.sort, "sort", "", "Sort order.")
	f.BoolVar(&c.low, "low", false, "Only items at or below their threshold.")
}

func (c *itemsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mode, err := core.ParseInventorySort(c.sort)
	if err != nil {
		return c.env.fail(err)
	}
	items := c.env.Service.Items(core.InventoryQuery{Search: c.search, Sort: mode, LowOnly: c.low})
	printItems(c.env.Out, items)
	return subcommands.ExitSuccess
}

func printItems(out io.Writer, items []core.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No items.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tSTOCK\tTHRESHOLD\tPRICE\t")
	for _, it := range items {
		name := it.DisplayName
		if it.IsLow() {
			name += " (low)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t\n", name, it.Stock, it.Threshold, core.FormatMoney(it.Price))
	}
	tw.Flush()
}

type addCmd struct {
	env       *Env
	name      string
	stock     int
	threshold optionalInt
	price     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add stock, creating the item if needed" }
func (*addCmd) Usage() string {
	return `ledgerctl add -name <name> -stock <n> [-threshold <n>] [-price <amount>]

  Adds stock to the item with this name. An existing item also takes the
  new name, threshold (default 5) and price.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Item name.")
	f.IntVar(&c.stock, "stock", 0, "Units to add (must be positive).")
	f.Var(&c.threshold, "threshold", "Reorder threshold.")
	f.StringVar(&c.price, "price", "", "Unit price; empty leaves the item unpriced.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	price, err := core.ParsePrice(c.price)
	if err != nil {
		return c.env.fail(err)
	}
	item, created, err := c.env.Service.AddItem(cliContext(ctx), core.ItemInput{
		Name:      c.name,
		Stock:     c.stock,
		Threshold: c.threshold.ptr(),
		Price:     price,
	})
	if err != nil {
		return c.env.fail(err)
	}
	verb := "Updated"
	if created {
		verb = "Added"
	}
	fmt.Fprintf(c.env.Out, "%s %s: stock %d\n", verb, item.DisplayName, item.Stock)
	return subcommands.ExitSuccess
}

type editCmd struct {
	env       *Env
	name      string
	stock     int
	threshold optionalInt
	price     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change an item's name, stock, threshold or price" }
func (*editCmd) Usage() string {
	return `ledgerctl edit [-name <new name>] [-stock <n>] [-threshold <n>] [-price <amount>] <item>

  Changes the given fields of <item>; omitted flags keep their current
  value. -price "" clears the price. Renaming carries the new name onto
  the item's orders.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "New item name.")
	f.IntVar(&c.stock, "stock", 0, "New stock level.")
	f.Var(&c.threshold, "threshold", "New reorder threshold.")
	f.StringVar(&c.price, "price", "", "New unit price; empty clears it.")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("edit: exactly one item name is required")
	}
	key := core.NormalizeKey(f.Arg(0))

	var (
		patch core.ItemPatch
		err   error
	)
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			if strings.TrimSpace(c.name) != "" {
				patch.Name = &c.name
			}
		case "stock":
			patch.Stock = &c.stock
		case "threshold":
			patch.Threshold = c.threshold.ptr()
		case "price":
			patch.Price, err = core.ParsePrice(c.price)
			patch.ClearPrice = patch.Price == nil
		}
	})
	if err != nil {
		return c.env.fail(err)
	}

	item, affected, err := c.env.Service.UpdateItem(cliContext(ctx), key, patch)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "Saved %s (%d orders updated)\n", item.DisplayName, len(affected))
	return subcommands.ExitSuccess
}

type removeCmd struct {
	env *Env
	yes bool
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove an item; its orders are kept" }
func (*removeCmd) Usage() string {
	return `ledgerctl remove [-y] <item>
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation.")
}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("remove: exactly one item name is required")
	}
	key := core.NormalizeKey(f.Arg(0))
	item, ok := c.env.Service.FindItem(key)
	if !ok {
		return c.env.fail(&core.NotFoundError{Kind: "item", ID: key})
	}
	if !c.yes && !c.env.confirm(fmt.Sprintf("Remove %s?", item.DisplayName)) {
		fmt.Fprintln(c.env.Out, "Aborted.")
		return subcommands.ExitSuccess
	}
	if _, err := c.env.Service.RemoveItem(cliContext(ctx), key); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "Removed %s\n", item.DisplayName)
	return subcommands.ExitSuccess
}
