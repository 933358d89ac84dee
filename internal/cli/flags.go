package cli

import flag "github.com/spf13/pflag"

// CommonFlags holds flags shared across commands.
type CommonFlags struct {
	Config  string
	Quiet   bool
	Verbose bool
}

// AddCommonFlags adds common flags to a FlagSet.
func AddCommonFlags(fs *flag.FlagSet, f *CommonFlags) {
	fs.StringVarP(&f.Config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.Quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "show detailed output")
}

// Changed returns the names of the flags set on the command line.
func Changed(fs *flag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { changed[f.Name] = true })
	return changed
}
