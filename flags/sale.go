package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// SaleFlags describes the sale a schedule is built for. Explicit values are
// layered on top of the selected preset.

func SaleFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset",
			Usage: "Sale preset to start from (reference|dev|short, empty for none)",
			Value: "reference",
		},
		cli.Uint64Flag{
			Name:  "sale.start",
			Usage: "First block of the allocation phase",
		},
		cli.Uint64Flag{
			Name:  "sale.allocblocks",
			Usage: "Length of the allocation phase in blocks",
		},
		cli.StringFlag{
			Name:  "sale.allocprice",
			Usage: "Token price during allocation in wei (decimal or 0x hex)",
		},
		cli.Uint64Flag{
			Name:  "sale.stages",
			Usage: "Number of distribution stages after allocation",
		},
		cli.Uint64Flag{
			Name:  "sale.stageblocks",
			Usage: "Length of each distribution stage in blocks",
		},
		cli.StringFlag{
			Name:  "sale.priceincrease",
			Usage: "Price increase per distribution stage in wei (decimal or 0x hex)",
		},
	}
}
