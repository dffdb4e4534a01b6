package config

import (
	"fmt"
	"io"
	"slices"

	"github.com/mattn/go-shellwords"
)

// Options holds the raw command-line values before any filesystem checks.
type Options struct {
	Help        bool
	NoLogs      bool
	Verbose     bool
	SourceDir   string
	Formatter   string
	IgnorePaths []string
	ExtraArgs   []string
	ReportPath  string
	HistoryDSN  string
}

type flagKind uint8

const (
	// kindSwitch takes no value.
	kindSwitch flagKind = iota
	// kindValue takes the next token.
	kindValue
	// kindList takes tokens until the next recognized flag.
	kindList
	// kindRemainder takes every token that follows, verbatim.
	kindRemainder
)

type flagSpec struct {
	name  string
	usage string
	kind  flagKind
	set   func(o *Options, values []string)
}

var flags = []flagSpec{
	{name: "--help", usage: "print help", kind: kindSwitch,
		set: func(o *Options, _ []string) { o.Help = true }},
	{name: "--no-logs", usage: "disable logs (might improve performance slightly)", kind: kindSwitch,
		set: func(o *Options, _ []string) { o.NoLogs = true }},
	{name: "--verbose", usage: "enable verbose logs", kind: kindSwitch,
		set: func(o *Options, _ []string) { o.Verbose = true }},
	{name: "-S", usage: "source directory to format", kind: kindValue,
		set: func(o *Options, v []string) { o.SourceDir = v[0] }},
	{name: "-E", usage: "clang-format executable path", kind: kindValue,
		set: func(o *Options, v []string) { o.Formatter = v[0] }},
	{name: "-I", usage: "space separated list of paths to ignore relative to [-S]", kind: kindList,
		set: func(o *Options, v []string) { o.IgnorePaths = append(o.IgnorePaths, v...) }},
	{name: "-C", usage: "additional command-line arguments for clang-format executable, takes the rest of the line", kind: kindRemainder,
		set: func(o *Options, v []string) { o.ExtraArgs = append(o.ExtraArgs, splitWords(v)...) }},
	{name: "--report", usage: "write a run report to this file (.yaml, or .zst for compressed)", kind: kindValue,
		set: func(o *Options, v []string) { o.ReportPath = v[0] }},
	{name: "--history", usage: "record the run in PostgreSQL using this connection string", kind: kindValue,
		set: func(o *Options, v []string) { o.HistoryDSN = v[0] }},
}

func lookup(token string) (flagSpec, bool) {
	i := slices.IndexFunc(flags, func(f flagSpec) bool { return f.name == token })
	if i < 0 {
		return flagSpec{}, false
	}
	return flags[i], true
}

// Parse reads the command-line tokens, program name excluded. Tokens that belong to no flag are ignored,
// and a value flag directly followed by another flag or the end of the line stays unset.
func Parse(args []string) Options {
	var o Options
	for i := 0; i < len(args); i++ {
		spec, ok := lookup(args[i])
		if !ok {
			continue
		}

		switch spec.kind {
		case kindSwitch:
			spec.set(&o, nil)
		case kindValue:
			if i+1 >= len(args) {
				continue
			}
			if _, isFlag := lookup(args[i+1]); isFlag {
				continue
			}
			i++
			spec.set(&o, args[i:i+1])
		case kindList:
			j := i + 1
			for j < len(args) {
				if _, isFlag := lookup(args[j]); isFlag {
					break
				}
				j++
			}
			spec.set(&o, args[i+1:j])
			i = j - 1
		case kindRemainder:
			spec.set(&o, args[i+1:])
			i = len(args)
		}
	}
	return o
}

// splitWords breaks each token into words with shell quoting rules, without running a shell,
// so "-C '--style=file --Werror'" passes two arguments. A token that does not parse is kept whole.
func splitWords(tokens []string) []string {
	var words []string
	for _, token := range tokens {
		w, err := shellwords.Parse(token)
		if err != nil {
			words = append(words, token)
			continue
		}
		words = append(words, w...)
	}
	return words
}

// PrintUsage writes the flag list followed by the source page and license lines.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Available arguments list:")
	for _, f := range flags {
		fmt.Fprintf(w, "\t[%s]   %s\n", f.name, f.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Source code page: https://github.com/GloryOfNight/clang-format-all.git")
	fmt.Fprintln(w, "MIT License - Copyright (c) 2022 Sergey Dikiy")
}
