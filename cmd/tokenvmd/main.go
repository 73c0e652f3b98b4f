package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/tokenvm"
	tokenvmd "github.com/iov-one/tokenvm/cmd/tokenvmd/app"
	"github.com/iov-one/tokenvm/commands"
	"github.com/iov-one/tokenvm/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".tokenvm")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("tokenvmd")
	fmt.Println("          Token program chain node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check that genesis files can initialize the chain")
	fmt.Println("getblock  Extract a block from blockchain.db")
	fmt.Println("retry     Run last block again to ensure it produces same result")
	fmt.Println("testgen   Write example encodings into a directory")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.tokenvm")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "tokenvm")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(tokenvmd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(tokenvmd.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(tokenvmd.Initializer(tokenvmd.Runtime()), rest)
	case "getblock":
		err = server.GetBlockCmd(os.Stdout, rest)
	case "retry":
		err = server.RetryCmd(tokenvmd.InlineApp, logger, *varHome, rest)
	case "testgen":
		err = commands.TestGenCmd(tokenvmd.Examples(), rest)
	case "version":
		fmt.Println(tokenvm.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
