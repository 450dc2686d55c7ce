package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// ContractFlags locate a deployed sale contract.
func ContractFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "rpc",
			Usage: "HTTP, WebSocket or IPC endpoint of the node hosting the sale contract",
			Value: "http://127.0.0.1:8545",
		},
		cli.StringFlag{
			Name:  "contract",
			Usage: "Address of the deployed sale contract",
		},
	}
}

// TransactorFlags select the key that signs state changing transactions.
func TransactorFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "keyfile",
			Usage: "File holding the hex encoded private key used to sign transactions",
		},
		cli.Uint64Flag{
			Name:  "chainid",
			Usage: "Chain ID used for transaction signing (0 = ask the node)",
		},
	}
}

// VerifyFlags extend ContractFlags with the optional verify modes.
func VerifyFlags() []cli.Flag {
	return Merge(ContractFlags(), TransactorFlags(), []cli.Flag{
		cli.BoolFlag{
			Name:  "timeline",
			Usage: "Jump the contract through every stage boundary and check each position (needs --keyfile)",
		},
		cli.StringFlag{
			Name:  "token",
			Usage: "Expected token tracker address; enables the lifecycle check",
		},
		cli.StringFlag{
			Name:  "controller",
			Usage: "Expected whitelist controller address; enables the lifecycle check",
		},
	})
}

// WhitelistFlags extend ContractFlags for the whitelist command.
func WhitelistFlags() []cli.Flag {
	return Merge(ContractFlags(), TransactorFlags(), []cli.Flag{
		cli.BoolFlag{
			Name:  "reject",
			Usage: "Remove the participants from the whitelist instead of adding them",
		},
	})
}
