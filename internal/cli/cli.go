// Package cli implements the ledgerctl subcommands on top of core.Service.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/google/subcommands"
)

// Env is shared by every command.
type Env struct {
	Service       *core.Service
	Out           io.Writer // command output
	Err           io.Writer // user-facing errors
	In            io.Reader // confirmations and "import -"
	MaxImportSize int64
}

// Register adds all commands to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&itemsCmd{env: env}, "inventory")
	c.Register(&addCmd{env: env}, "inventory")
	c.Register(&editCmd{env: env}, "inventory")
	c.Register(&removeCmd{env: env}, "inventory")

	c.Register(&ordersCmd{env: env}, "orders")
	c.Register(&placeCmd{env: env}, "orders")
	c.Register(&toggleCmd{env: env}, "orders")
	c.Register(&cancelCmd{env: env}, "orders")

	c.Register(&salesCmd{env: env}, "reports")
	c.Register(&dashboardCmd{env: env}, "reports")

	c.Register(&exportCmd{env: env}, "data")
	c.Register(&importCmd{env: env}, "data")
	c.Register(&resetCmd{env: env}, "data")
}

// cliContext tags service calls as coming from the CLI.
func cliContext(ctx context.Context) context.Context {
	return core.ContextWithSource(ctx, "cli")
}

// fail prints the user-facing form of err.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(e.Err, core.FormatUserError(err))
	return subcommands.ExitFailure
}

// usage reports a command line mistake.
func (e *Env) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, format+"\n", args...)
	return subcommands.ExitUsageError
}

// confirm asks a yes/no question on In. Anything but y or yes is no.
func (e *Env) confirm(question string) bool {
	fmt.Fprintf(e.Out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(e.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// optionalInt is a flag that records whether it was set.
type optionalInt struct {
	v   int
	set bool
}

func (o *optionalInt) String() string {
	if !o.set {
		return ""
	}
	return strconv.Itoa(o.v)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	o.v, o.set = n, true
	return nil
}

func (o *optionalInt) ptr() *int {
	if !o.set {
		return nil
	}
	v := o.v
	return &v
}
