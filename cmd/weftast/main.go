package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/weftlang/weft/internal/config"
)

const (
	ERROR_STATUS_CODE = 1
	COMMAND_NAME      = "weftast"
	COMMAND_DESC      = "Lower serialized weft syntax trees into typed ASTs."
)

var errUnitsFailed = errors.New("some units have errors")

type CLI struct {
	LogLevel string `name:"log-level" enum:",trace,debug,info,warn,error" default:"" help:"Log level, overrides the configuration file."`

	Lower  lowerCmd  `cmd:"" help:"Lower serialized units and print their AST or their errors."`
	Config configCmd `cmd:"" help:"Print the path of the configuration file."`
}

// cmdEnv is bound to the Run method of subcommands.
type cmdEnv struct {
	out        io.Writer
	errOut     io.Writer
	config     config.CLIConfig
	configPath string
	logger     zerolog.Logger
}

type kongExit int

func main() {
	statusCode := _main(os.Args[1:], os.Stdout, os.Stderr)
	if statusCode != 0 {
		os.Exit(statusCode)
	}
}

func _main(args []string, outW io.Writer, errW io.Writer) (statusCode int) {
	defer func() {
		if e := recover(); e != nil {
			code, ok := e.(kongExit)
			if !ok {
				panic(e)
			}
			statusCode = int(code)
		}
	}()

	cliConfig, configPath, err := config.LoadCLIConfig()
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	var cli CLI
	env := &cmdEnv{
		out:        outW,
		errOut:     errW,
		config:     cliConfig,
		configPath: configPath,
	}

	parser, err := kong.New(&cli,
		kong.Name(COMMAND_NAME),
		kong.Description(COMMAND_DESC),
		kong.Writers(outW, errW),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
		kong.Bind(env),
	)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	if cli.LogLevel != "" {
		env.config.LogLevel = cli.LogLevel
	}
	level := env.config.ZerologLevel()
	zerolog.SetGlobalLevel(level)

	env.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     errW,
		NoColor: !config.SHOULD_COLORIZE,
	}).Level(level).With().Timestamp().Logger()

	if configPath != "" {
		env.logger.Debug().Str("path", configPath).Msg("configuration file loaded")
	}

	if err := ctx.Run(); err != nil {
		if !errors.Is(err, errUnitsFailed) {
			fmt.Fprintln(errW, err)
		}
		return ERROR_STATUS_CODE
	}
	return 0
}

type configCmd struct {
	Init bool `help:"Create the configuration file with the default values if it does not exist."`
}

func (c *configCmd) Run(env *cmdEnv) error {
	if c.Init {
		path, err := config.WriteDefaultCLIConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(env.out, path)
		return nil
	}

	if env.configPath == "" {
		fmt.Fprintf(env.out, "no configuration file found (%s is searched in the XDG config directories)\n", config.CLI_CONFIG_RELPATH)
		return nil
	}
	fmt.Fprintln(env.out, env.configPath)
	return nil
}
