package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/google/subcommands"
)

type ordersCmd struct {
	env    *Env
	search string
	status string
}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "list orders, most recent first" }
func (*ordersCmd) Usage() string {
	return `ledgerctl orders [-search <text>] [-status all|pending|delivered]
`
}

func (c *ordersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Only orders whose item name or status contains this text.")
	f.StringVar(&c.status, "status", "all", "Status filter.")
}

func (c *ordersCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status, err := core.ParseStatusFilter(c.status)
	if err != nil {
		return c.env.fail(err)
	}
	printOrders(c.env.Out, c.env.Service.Orders(core.OrderQuery{Search: c.search, Status: status}))
	return subcommands.ExitSuccess
}

func printOrders(out io.Writer, orders []core.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tITEM\tQTY\tSTATUS\t")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t\n",
			o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.ItemName, o.Qty, o.Status)
	}
	tw.Flush()
}

type placeCmd struct {
	env  *Env
	item string
	qty  int
}

func (*placeCmd) Name() string     { return "place" }
func (*placeCmd) Synopsis() string { return "place an order, deducting stock" }
func (*placeCmd) Usage() string {
	return `ledgerctl place -item <name> -qty <n>
`
}

func (c *placeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "Item name.")
	f.IntVar(&c.qty, "qty", 0, "Units to order (must be positive).")
}

func (c *placeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	order, err := c.env.Service.PlaceOrder(cliContext(ctx), c.item, c.qty)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "Placed order %s: %d x %s\n", order.ID, order.Qty, order.ItemName)
	return subcommands.ExitSuccess
}

type toggleCmd struct {
	env *Env
}

func (*toggleCmd) Name() string             { return "toggle" }
func (*toggleCmd) Synopsis() string         { return "switch an order between Pending and Delivered" }
func (*toggleCmd) Usage() string            { return "ledgerctl toggle <order id>\n" }
func (*toggleCmd) SetFlags(_ *flag.FlagSet) {}

func (c *toggleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("toggle: exactly one order id is required")
	}
	id := f.Arg(0)
	order, found, err := c.env.Service.ToggleDelivered(cliContext(ctx), id)
	if err != nil {
		return c.env.fail(err)
	}
	if !found {
		return c.env.fail(&core.NotFoundError{Kind: "order", ID: id})
	}
	fmt.Fprintf(c.env.Out, "Order %s is now %s\n", order.ID, order.Status)
	return subcommands.ExitSuccess
}

type cancelCmd struct {
	env *Env
	yes bool
}

func (*cancelCmd) Name() string     { return "cancel" }
func (*cancelCmd) Synopsis() string { return "cancel an order, restoring its stock" }
func (*cancelCmd) Usage() string    { return "ledgerctl cancel [-y] <order id>\n" }

func (c *cancelCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation.")
}

func (c *cancelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("cancel: exactly one order id is required")
	}
	id := f.Arg(0)
	order, ok := c.env.Service.FindOrder(id)
	if !ok {
		return c.env.fail(&core.NotFoundError{Kind: "order", ID: id})
	}
	if !c.yes && !c.env.confirm(fmt.Sprintf("Cancel order of %d x %s?", order.Qty, order.ItemName)) {
		fmt.Fprintln(c.env.Out, "Aborted.")
		return subcommands.ExitSuccess
	}

	res, err := c.env.Service.CancelOrder(cliContext(ctx), id)
	if err != nil {
		return c.env.fail(err)
	}
	if res.Restored {
		fmt.Fprintf(c.env.Out, "Cancelled order %s; %d units returned to stock\n", id, res.Order.Qty)
	} else {
		fmt.Fprintf(c.env.Out, "Cancelled order %s; item no longer exists, stock unchanged\n", id)
	}
	return subcommands.ExitSuccess
}
