package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"cfgc/common"
	"cfgc/config"
	"cfgc/driver"
	"cfgc/irinfo"
	"cfgc/mcgen"
	"cfgc/report"
	"cfgc/target"

	"github.com/ComedicChimera/olive"
	"github.com/pkg/errors"
)

// stdout receives command output that is not a diagnostic.
var stdout io.Writer = os.Stdout

// Execute is the main entry point for the `cfgc` CLI utility.  It returns the
// process exit status.
func Execute() int {
	return run(os.Args)
}

func run(args []string) int {
	defer report.CatchErrors()

	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("cfgc", "cfgc turns LLVM IR into machine code for a chosen target", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the code generator log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "generate code for an IR file", true)
	buildCmd.AddPrimaryArg("ir-path", "the path to the LLVM IR file", true)
	buildCmd.AddStringArg("target", "t", "the target to generate code for", false)
	buildCmd.AddSelectorArg("mode", "m", "where the generated code goes", false, config.OutputNames)
	buildCmd.AddStringArg("config", "c", "the profile to load", false)
	buildCmd.AddFlag("emit-llvm", "el", "also write the optimized IR")
	buildCmd.AddFlag("dump-bits", "db", "print the code object produced for memory output")

	inspectCmd := cli.AddSubcommand("inspect", "summarize the functions of an IR file", true)
	inspectCmd.AddPrimaryArg("ir-path", "the path to the LLVM IR file", true)

	cli.AddSubcommand("targets", "list the known targets", false)
	cli.AddSubcommand("init", "write a default profile to the working directory", false)
	cli.AddSubcommand("version", "print the cfgc version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		report.ReportError("CLI Usage Error", err)
		return 1
	}

	loglevel := result.Arguments["loglevel"].(string)
	lvl, _ := report.ParseLogLevel(loglevel)
	report.InitReporter(lvl, os.Stderr)

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(subResult, loglevel)
	case "inspect":
		execInspectCommand(subResult)
	case "targets":
		execTargetsCommand()
	case "init":
		execInitCommand()
	case "version":
		report.ReportInfo("cfgc Version", common.CfgcVersion)
	default:
		report.ReportError("CLI Usage Error", errors.New("expected a subcommand"))
	}

	if report.AnyErrors() {
		return 1
	}

	return 0
}

// execBuildCommand executes the build subcommand and handles all errors.
func execBuildCommand(result *olive.ArgParseResult, loglevel string) {
	irPath, _ := result.PrimaryArg()

	explicit := ""
	if v, ok := result.Arguments["config"]; ok {
		explicit = v.(string)
	}

	prof, ok := loadProfile(explicit)
	if !ok {
		return
	}

	// The profile only sets the log level when the command line leaves it at
	// its default.
	if loglevel == "verbose" && prof.LogLevel != loglevel {
		lvl, _ := report.ParseLogLevel(prof.LogLevel)
		report.InitReporter(lvl, os.Stderr)
	}

	if err := prof.RegisterTargets(); err != nil {
		report.ReportError("Config Error", err)
		return
	}

	targetName := prof.Target
	if v, ok := result.Arguments["target"]; ok {
		targetName = v.(string)
	}

	outputName := prof.Output
	if v, ok := result.Arguments["mode"]; ok {
		outputName = v.(string)
	}

	out, err := driver.ParseOutput(outputName)
	if err != nil {
		report.ReportError("CLI Usage Error", err)
		return
	}

	if driver.SetTarget(targetName) {
		return
	}

	_, err = driver.Codegen(
		driver.SourceFile(irPath),
		prof.EmitLLVM || result.HasFlag("emit-llvm"),
		prof.DumpBits || result.HasFlag("dump-bits"),
		out,
	)

	var fatal *mcgen.FatalError
	if errors.As(err, &fatal) {
		report.ReportFatal("%s", fatal)
	}
}

// loadProfile finds and loads the profile for a build.  Not having a profile
// at all is fine: the defaults are used.
func loadProfile(explicit string) (*config.Profile, bool) {
	path, found, err := config.Locate(explicit)
	if err != nil {
		report.ReportError("Config Error", err)
		return nil, false
	}

	if !found {
		return config.Default(), true
	}

	prof, err := config.Load(path)
	if err != nil {
		report.ReportError("Config Error", err)
		return nil, false
	}

	report.ReportInfo("Config", "using %s", path)
	return prof, true
}

// execInspectCommand prints the function table of an IR file.
func execInspectCommand(result *olive.ArgParseResult) {
	irPath, _ := result.PrimaryArg()

	sum, err := irinfo.SummarizeFile(irPath)
	if err != nil {
		report.ReportError("Parse Error", err)

		if errors.Is(err, irinfo.ErrOpaquePointers) {
			report.ReportInfo("Inspect", "`build -m mem --dump-bits` summarizes such IR through LLVM")
		}
		return
	}

	fmt.Fprint(stdout, sum.String())
}

// execTargetsCommand lists the target table, marking the installed target.
func execTargetsCommand() {
	// Extra targets from the profile are part of the table too.
	if prof, ok := loadProfile(""); ok {
		if err := prof.RegisterTargets(); err != nil {
			report.ReportError("Config Error", err)
			return
		}
	}

	current := target.Current()

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, name := range target.Names() {
		s, _ := target.Lookup(name)

		mark := " "
		if current != nil && current.Name == name {
			mark = "*"
		}

		endian, _ := target.ParseEndian(s.Endian)
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%d-bit %s-endian\n", mark, s.Name, s.Triple, s.Arch, s.WordSize, endian)
	}
	tw.Flush()
}

// execInitCommand writes a default profile into the working directory.
func execInitCommand() {
	workDir, err := os.Getwd()
	if err != nil {
		report.ReportError("Path Error", err)
		return
	}

	path, err := config.Init(workDir)
	if err != nil {
		report.ReportError("Config Init Error", err)
		return
	}

	report.ReportInfo("Config", "wrote %s", path)
}
