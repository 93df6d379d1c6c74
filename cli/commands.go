package cli

// Globals defines global flags available to all commands.
type Globals struct {
	File      []string `help:"Journal file to read (repeatable, '-' for stdin). Defaults to $LEDGER_FILE or ~/.hledger.journal." short:"f" placeholder:"FILE"`
	Telemetry bool     `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Lots LotsCmd `cmd:"" help:"Show the open FIFO lots of a commodity."`
	Sell SellCmd `cmd:"" help:"Print the hledger transaction for a FIFO sale."`
	Info InfoCmd `cmd:"" help:"Show holdings, profit and XIRR for every commodity held at cost."`
}
