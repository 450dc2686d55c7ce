package launcher

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-rico/conformance"
)

var errNoKeyfile = errors.New("--keyfile is required to send transactions")

// parseAddress reads a hex address given through the named flag or argument.
func parseAddress(name, raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", name, raw)
	}
	return common.HexToAddress(raw), nil
}

// loadSigningKey reads the private key named by --keyfile.
func loadSigningKey(ctx *cli.Context) (*ecdsa.PrivateKey, error) {
	path := ctx.String("keyfile")
	if path == "" {
		return nil, errNoKeyfile
	}
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("load key %s: %w", path, err)
	}
	return key, nil
}

// newTransactOpts signs with key for chainID.
func newTransactOpts(ctx context.Context, key *ecdsa.PrivateKey, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// dialContract connects to the node behind --rpc and binds the sale at
// address. With a key the binding also sends transactions through the node.
func dialContract(ctx context.Context, c *cli.Context, address common.Address, key *ecdsa.PrivateKey) (*conformance.BoundContract, func(), error) {
	client, err := ethclient.DialContext(ctx, c.String("rpc"))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", c.String("rpc"), err)
	}
	contract, err := conformance.NewBoundContract(address, client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	if key == nil {
		return contract, client.Close, nil
	}

	chainID := new(big.Int).SetUint64(c.Uint64("chainid"))
	if chainID.Sign() == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("chain id: %w", err)
		}
	}
	opts, err := newTransactOpts(ctx, key, chainID)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return contract.WithTransactor(client, client, opts), client.Close, nil
}
