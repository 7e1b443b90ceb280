package cli

import (
	"github.com/spf13/pflag"
)

// ServeFlags holds the flags of the serve command.
type ServeFlags struct {
	Port int // 0 = use config
}

// Bind registers the serve flags.
func (f *ServeFlags) Bind(fs *pflag.FlagSet) {
	fs.IntVarP(&f.Port, "port", "p", 0, "port to listen on (default: server.port from config)")
}

// AnalyzeFlags holds the flags of the analyze command.
type AnalyzeFlags struct {
	Input     string
	Output    string
	Pretty    bool
	Record    bool
	Workspace string
}

// Bind registers the analyze flags.
func (f *AnalyzeFlags) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Input, "input", "i", "", `JSON file with "transactions" and "receipts" ("-" for stdin)`)
	fs.StringVarP(&f.Output, "output", "o", "", "write the result to this file instead of stdout")
	fs.BoolVar(&f.Pretty, "pretty", false, "indent the JSON result")
	fs.BoolVar(&f.Record, "record", false, "record the run in the configured database")
	fs.StringVar(&f.Workspace, "workspace", "", "analyze the inputs stored for this workspace instead of --input")
}
